package registry

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// XML layout consumed by the runner:
//
//	<Registry unique="yes">
//	  <Key name="AlgType" type="string">RunAlgs</Key>
//	  <Key name="NEvent" type="number">100</Key>
//	  <Key name="selectMuons" type="registry">
//	    <Registry unique="yes">...</Registry>
//	  </Key>
//	</Registry>
type xmlRegistry struct {
	XMLName xml.Name `xml:"Registry"`
	Unique  string   `xml:"unique,attr"`
	Keys    []xmlKey `xml:"Key"`
}

type xmlKey struct {
	Name     string       `xml:"name,attr"`
	Type     string       `xml:"type,attr"`
	Value    string       `xml:",chardata"`
	Registry *xmlRegistry `xml:"Registry"`
}

func toXML(r *Registry) (*xmlRegistry, error) {
	x := &xmlRegistry{Unique: "yes"}
	if !r.UniqueKeys() {
		x.Unique = "no"
	}
	for _, e := range r.Entries() {
		if err := checkXMLText(e.Key); err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		k := xmlKey{Name: e.Key, Type: e.Kind.String()}
		if e.Kind == KindRegistry {
			sub, err := toXML(e.Reg)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Key, err)
			}
			k.Registry = sub
		} else {
			if err := checkXMLText(e.Text); err != nil {
				return nil, fmt.Errorf("key %q: %w", e.Key, err)
			}
			k.Value = e.Text
		}
		x.Keys = append(x.Keys, k)
	}
	return x, nil
}

// checkXMLText rejects text the encoder would silently turn into U+FFFD:
// invalid UTF-8 and control characters other than tab, newline and
// carriage return.
func checkXMLText(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: invalid UTF-8", ErrXMLText)
	}
	for _, c := range s {
		if c < 0x20 && c != '\t' && c != '\n' && c != '\r' || c == 0xFFFE || c == 0xFFFF {
			return fmt.Errorf("%w: character %U", ErrXMLText, c)
		}
	}
	return nil
}

func fromXML(x *xmlRegistry) (*Registry, error) {
	r := New()
	if x.Unique == "no" {
		r.AllowNonUniqueKeys()
	}
	for _, k := range x.Keys {
		if k.Name == "" {
			return nil, ErrEmptyKey
		}
		switch k.Type {
		case "string", "":
			r.SetVal(k.Name, k.Value)
		case "number":
			if err := r.SetValueDouble(k.Name, k.Value); err != nil {
				return nil, err
			}
		case "registry":
			if k.Registry == nil {
				r.SetRegistry(k.Name, New())
				continue
			}
			sub, err := fromXML(k.Registry)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.Name, err)
			}
			r.set(Entry{Key: k.Name, Kind: KindRegistry, Reg: sub})
		default:
			return nil, fmt.Errorf("key %q: unknown type %q", k.Name, k.Type)
		}
	}
	return r, nil
}

// WriteXML writes r as an indented XML document. Keys and values holding
// control characters other than tab, newline and carriage return are
// rejected with ErrXMLText before anything is written.
func (r *Registry) WriteXML(w io.Writer) error {
	x, err := toXML(r)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(x); err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// WriteXMLFile writes r to path, creating parent directories.
func (r *Registry) WriteXMLFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // G304: output path chosen by the user
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.WriteXML(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadXML parses a registry written by WriteXML.
func ReadXML(rd io.Reader) (*Registry, error) {
	var x xmlRegistry
	if err := xml.NewDecoder(rd).Decode(&x); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return fromXML(&x)
}

// ReadXMLFile parses the registry stored at path.
func ReadXMLFile(path string) (*Registry, error) {
	f, err := os.Open(path) //nolint:gosec // G304: config path chosen by the user
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadXML(f)
}
