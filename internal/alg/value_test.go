package alg

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/anpconf/internal/registry"
)

func text(t *testing.T, reg *registry.Registry, key string) string {
	t.Helper()
	val, ok := reg.Get(key)
	require.True(t, ok, "missing key %s", key)
	return val
}

func TestSetRegistryKey_Scalars(t *testing.T) {
	reg := registry.New()
	require.NoError(t, SetRegistryKey(reg, "Yes", Bool(true)))
	require.NoError(t, SetRegistryKey(reg, "No", Bool(false)))
	require.NoError(t, SetRegistryKey(reg, "Int", Int(42)))
	require.NoError(t, SetRegistryKey(reg, "Neg", Int(-9000000000)))
	require.NoError(t, SetRegistryKey(reg, "Pi", Float(3.14159265358979)))
	require.NoError(t, SetRegistryKey(reg, "Str", String("fabs([Eta]) < 2.5")))

	require.Equal(t, "yes", text(t, reg, "Yes"))
	require.Equal(t, "no", text(t, reg, "No"))
	require.Equal(t, "42", text(t, reg, "Int"))
	require.Equal(t, "-9000000000", text(t, reg, "Neg"))
	require.Equal(t, "3.14159265359", text(t, reg, "Pi"))
	require.Equal(t, "fabs([Eta]) < 2.5", text(t, reg, "Str"))
}

func TestSetRegistryKey_List(t *testing.T) {
	reg := registry.New()
	require.NoError(t, SetRegistryKey(reg, "Abc", Strings("a", "b", "c")))
	require.NoError(t, SetRegistryKey(reg, "Empty", List{}))
	require.NoError(t, SetRegistryKey(reg, "Mixed", List{Int(1), Float(2.5), Bool(true), String("x")}))

	require.Equal(t, "a,b,c", text(t, reg, "Abc"))
	require.Equal(t, "", text(t, reg, "Empty"))
	require.Equal(t, "1,2.5,yes,x", text(t, reg, "Mixed"))
}

func TestSetRegistryKey_NestedAndExport(t *testing.T) {
	sub := registry.New()
	sub.SetVal("ReadFile", "hist.root")

	reg := registry.New()
	require.NoError(t, SetRegistryKey(reg, "HistMan", Nested{Reg: sub}))
	require.NoError(t, SetRegistryKey(reg, "plotMuons", Export{From: New("plotMuons", "PlotCand")}))

	got, ok := reg.GetRegistry("HistMan")
	require.True(t, ok)
	require.True(t, sub.Equal(got))

	exp, ok := reg.GetRegistry("plotMuons")
	require.True(t, ok)
	require.Equal(t, "PlotCand", text(t, exp, "AlgType"))
}

type badValue struct{}

func (badValue) isValue() {}

func TestSetRegistryKey_Unknown(t *testing.T) {
	tests := []struct {
		name string
		v    Value
	}{
		{"nil", nil},
		{"foreign", badValue{}},
		{"nil nested", Nested{}},
		{"nil export", Export{}},
		{"nested list", List{String("a"), List{String("b")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.New()
			err := SetRegistryKey(reg, "Key", tt.v)
			require.ErrorIs(t, err, ErrUnknownValue)

			var ve *ValueError
			require.True(t, errors.As(err, &ve))
			require.Equal(t, "Key", ve.Key)
			require.Contains(t, err.Error(), "unknown type for Key")
			require.False(t, reg.KeyExists("Key"))
		})
	}
}

type failingExporter struct{}

func (failingExporter) ConfigRegistry() (*registry.Registry, error) {
	return nil, ErrDuplicateChild
}

func TestSetRegistryKey_ExportError(t *testing.T) {
	err := SetRegistryKey(registry.New(), "Key", Export{From: failingExporter{}})
	require.ErrorIs(t, err, ErrDuplicateChild)
}

func TestSetRegistryKey_IntProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Int64().Draw(t, "n")
		reg := registry.New()
		if err := SetRegistryKey(reg, "N", Int(n)); err != nil {
			t.Fatalf("set: %v", err)
		}
		got, err := reg.GetInt("N")
		if err != nil || got != n {
			t.Fatalf("got %d, %v; want %d", got, err, n)
		}
	})
}

func TestSetRegistryKey_FloatProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := rapid.Float64Range(-1e300, 1e300).Draw(t, "f")
		reg := registry.New()
		if err := SetRegistryKey(reg, "F", Float(f)); err != nil {
			t.Fatalf("set: %v", err)
		}
		s, _ := reg.Get("F")
		got, err := strconv.ParseFloat(s, 64)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if math.Abs(got-f) > 1e-11*math.Abs(f) {
			t.Fatalf("%q does not hold 12 significant digits of %v", s, f)
		}
	})
}

func TestSetRegistryKey_ListProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vals := rapid.SliceOf(rapid.StringMatching(`[a-z0-9]{1,6}`)).Draw(t, "vals")
		reg := registry.New()
		if err := SetRegistryKey(reg, "L", Strings(vals...)); err != nil {
			t.Fatalf("set: %v", err)
		}
		got, _ := reg.GetVec("L")
		if len(vals) == 0 {
			if len(got) != 0 {
				t.Fatalf("empty list gave %v", got)
			}
			return
		}
		for i := range vals {
			if got[i] != vals[i] {
				t.Fatalf("got %v want %v", got, vals)
			}
		}
	})
}
