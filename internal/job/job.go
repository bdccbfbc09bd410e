// Package job reads declarative YAML job files and builds the run wrapper
// they describe.
package job

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/anpconf/internal/log"
)

// Wrapper kinds.
const (
	KindModule = "module"
	KindNtuple = "ntuple"
)

// ErrInvalid is returned when a job file fails validation.
var ErrInvalid = errors.New("invalid job")

// File is the root structure of a job file.
type File struct {
	Kind          string            `yaml:"kind" validate:"oneof=module ntuple"`
	Name          string            `yaml:"name" validate:"required_if=Kind ntuple"`
	Params        Params            `yaml:"params"`
	GlobalParams  Params            `yaml:"global_params"`
	Top           *TopDef           `yaml:"top" validate:"required_if=Kind module"`
	HistFiles     []string          `yaml:"hist_files" validate:"dive,required"`
	Files         []string          `yaml:"files" validate:"dive,required"`
	InputDirs     []InputDirDef     `yaml:"input_dirs" validate:"dive"`
	RecursiveDirs []RecursiveDirDef `yaml:"recursive_dirs" validate:"dive"`
	Local         *LocalDef         `yaml:"local"`
}

// TopDef defines the RunAlgs top algorithm. A missing print means yes.
type TopDef struct {
	Name   string   `yaml:"name" validate:"required,nospace"`
	Print  *bool    `yaml:"print"`
	Params Params   `yaml:"params"`
	Algs   []AlgDef `yaml:"algs" validate:"dive"`
}

// AlgDef defines one algorithm node and its subtree.
type AlgDef struct {
	Name       string         `yaml:"name" validate:"required,nospace"`
	Type       string         `yaml:"type" validate:"required,nospace"`
	Params     Params         `yaml:"params"`
	Algs       []AlgDef       `yaml:"algs" validate:"dive"`
	SelectKeys []SelectKeyDef `yaml:"select_keys" validate:"dive"`
	Cuts       []CutListDef   `yaml:"cuts" validate:"dive"`
}

// SelectKeyDef defines a select key. An empty type means AND.
type SelectKeyDef struct {
	Key        string         `yaml:"key" validate:"required"`
	Type       string         `yaml:"type" validate:"omitempty,oneof=AND OR"`
	Selections []SelectionDef `yaml:"selections" validate:"required,min=1,dive"`
}

// SelectionDef is one select key expression. A missing decision means yes.
type SelectionDef struct {
	Expr     string `yaml:"expr" validate:"required"`
	Decision *bool  `yaml:"decision"`
}

// CutListDef stores items under key on the enclosing algorithm.
type CutListDef struct {
	Key   string   `yaml:"key" validate:"required"`
	Items []CutDef `yaml:"items" validate:"required,min=1,dive"`
}

// CutDef defines a cut and its sub-cuts. Debug is only written when set.
type CutDef struct {
	Name  string   `yaml:"name" validate:"required"`
	Conf  string   `yaml:"conf"`
	Abs   bool     `yaml:"abs"`
	Dummy bool     `yaml:"dummy"`
	Debug *bool    `yaml:"debug"`
	And   []CutDef `yaml:"and" validate:"dive"`
	Or    []CutDef `yaml:"or" validate:"dive"`
}

// InputDirDef is one SearchInputDir call.
type InputDirDef struct {
	Path   string   `yaml:"path" validate:"required"`
	Keys   []string `yaml:"keys"`
	Option string   `yaml:"option" validate:"omitempty,oneof=deep"`
}

// RecursiveDirDef is one SearchRecursive call.
type RecursiveDirDef struct {
	Path string `yaml:"path" validate:"required"`
	Key  string `yaml:"key" validate:"required"`
}

// LocalDef is one FindLocal call.
type LocalDef struct {
	Paths   []string `yaml:"paths" validate:"required,min=1,dive,required"`
	FileKey []string `yaml:"file_key"`
	DirKey  string   `yaml:"dir_key"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("nospace", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), " \t\r\n")
	})
	return v
}

// Load reads and validates the job file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug(log.CatJob, "Loaded job", "path", path, "kind", f.Kind)
	return f, nil
}

// Parse decodes and validates a job document. Unknown fields are errors.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("parse job: %w", err)
	}
	if f.Kind == "" {
		f.Kind = KindModule
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the struct constraints of f.
func (f *File) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s: failed %s", strings.TrimPrefix(fe.Namespace(), "File."), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
