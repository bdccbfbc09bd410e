package registry

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSetVal_UniqueKeysReplaceInPlace(t *testing.T) {
	r := New()
	r.SetVal("A", "1")
	r.SetVal("B", "2")
	r.SetVal("A", "3")

	require.Equal(t, []string{"A", "B"}, r.Keys())
	val, ok := r.Get("A")
	require.True(t, ok)
	require.Equal(t, "3", val)
}

func TestSetVal_NonUniqueKeysAppend(t *testing.T) {
	r := New()
	r.AllowNonUniqueKeys()
	r.SetVal("File", "a.root")
	r.SetVal("File", "b.root")

	require.False(t, r.UniqueKeys())
	require.Equal(t, []string{"File", "File"}, r.Keys())
	require.Equal(t, []string{"a.root", "b.root"}, r.GetAll("File"))
}

func TestSetRegistry_StoresDeepCopy(t *testing.T) {
	sub := New()
	sub.SetVal("CutName", "pt")

	r := New()
	r.SetRegistry("pt", sub)
	sub.SetVal("CutName", "changed")

	got, ok := r.GetRegistry("pt")
	require.True(t, ok)
	val, _ := got.Get("CutName")
	require.Equal(t, "pt", val)
}

func TestSetRegistry_NilStoresEmpty(t *testing.T) {
	r := New()
	r.SetRegistry("Empty", nil)

	got, ok := r.GetRegistry("Empty")
	require.True(t, ok)
	require.Equal(t, 0, got.Len())
}

func TestSetValueLong(t *testing.T) {
	r := New()
	require.NoError(t, r.SetValueLong("NEvent", "42"))
	require.NoError(t, r.SetValueLong("Neg", " -7 "))
	require.ErrorIs(t, r.SetValueLong("Bad", "4.2"), ErrNotNumber)

	n, err := r.GetInt("NEvent")
	require.NoError(t, err)
	require.Equal(t, int64(42), n)
	val, _ := r.Get("Neg")
	require.Equal(t, "-7", val)
	require.False(t, r.KeyExists("Bad"))
}

func TestSetValueDouble(t *testing.T) {
	r := New()
	require.NoError(t, r.SetValueDouble("Lumi", "     20280.2"))
	require.ErrorIs(t, r.SetValueDouble("Bad", "abc"), ErrNotNumber)

	f, err := r.GetFloat("Lumi")
	require.NoError(t, err)
	require.InDelta(t, 20280.2, f, 1e-9)
}

func TestMerge_OverwritesAndAppends(t *testing.T) {
	base := New()
	base.SetVal("Debug", "no")
	base.SetVal("Print", "yes")

	other := New()
	other.SetVal("Debug", "yes")
	sub := New()
	sub.SetVal("X", "1")
	other.SetRegistry("Sub", sub)

	base.Merge(other)

	require.Equal(t, []string{"Debug", "Print", "Sub"}, base.Keys())
	val, _ := base.Get("Debug")
	require.Equal(t, "yes", val)

	// merged registries are copies
	sub.SetVal("X", "2")
	got, _ := base.GetRegistry("Sub")
	x, _ := got.Get("X")
	require.Equal(t, "1", x)
}

func TestMerge_Nil(t *testing.T) {
	r := New()
	r.SetVal("A", "1")
	r.Merge(nil)
	require.Equal(t, 1, r.Len())
}

func TestRemoveKey(t *testing.T) {
	r := New()
	r.AllowNonUniqueKeys()
	r.SetVal("File", "a")
	r.SetVal("Keep", "k")
	r.SetVal("File", "b")

	require.True(t, r.RemoveKey("File"))
	require.False(t, r.RemoveKey("File"))
	require.Equal(t, []string{"Keep"}, r.Keys())
}

func TestClear_KeepsPolicy(t *testing.T) {
	r := New()
	r.AllowNonUniqueKeys()
	r.SetVal("A", "1")
	r.Clear()

	require.Equal(t, 0, r.Len())
	require.False(t, r.UniqueKeys())
}

func TestGetVec(t *testing.T) {
	r := New()
	r.SetVal("AlgList", "selectMuons, plotMuons, ")

	vec, ok := r.GetVec("AlgList")
	require.True(t, ok)
	require.Equal(t, []string{"selectMuons", "plotMuons"}, vec)

	_, ok = r.GetVec("Missing")
	require.False(t, ok)
}

func TestGetBool(t *testing.T) {
	r := New()
	r.SetVal("Debug", "no")
	r.SetVal("Print", "yes")
	r.SetVal("Odd", "maybe")

	v, err := r.GetBool("Debug")
	require.NoError(t, err)
	require.False(t, v)
	v, err = r.GetBool("Print")
	require.NoError(t, err)
	require.True(t, v)
	_, err = r.GetBool("Odd")
	require.Error(t, err)
	_, err = r.GetBool("Missing")
	require.Error(t, err)
}

func TestGet_SkipsRegistryEntries(t *testing.T) {
	r := New()
	r.SetRegistry("X", New())

	_, ok := r.Get("X")
	require.False(t, ok)
	_, ok = r.GetRegistry("X")
	require.True(t, ok)
}

func TestClone_Independent(t *testing.T) {
	r := New()
	r.SetVal("A", "1")
	c := r.Clone()
	c.SetVal("A", "2")

	val, _ := r.Get("A")
	require.Equal(t, "1", val)
	require.False(t, r.Equal(c))
}

func TestPrint_IndentsNested(t *testing.T) {
	sub := New()
	sub.SetVal("AlgType", "T2")
	r := New()
	r.SetVal("AlgType", "T1")
	r.SetRegistry("B", sub)

	var buf bytes.Buffer
	require.NoError(t, r.Print(&buf))
	require.Equal(t, "AlgType: T1\nB:\n   AlgType: T2\n", buf.String())
	require.Equal(t, buf.String(), r.String())
}

func TestWalk_VisitsDepthFirst(t *testing.T) {
	inner := New()
	inner.SetVal("C", "3")
	mid := New()
	mid.SetRegistry("Inner", inner)
	r := New()
	r.SetVal("A", "1")
	r.SetRegistry("Mid", mid)

	var seen []string
	r.Walk(func(path []string, e Entry) bool {
		seen = append(seen, strings.Join(append(path, e.Key), "."))
		return true
	})
	require.Equal(t, []string{"A", "Mid", "Mid.Inner", "Mid.Inner.C"}, seen)
}

func TestXML_RoundTrip(t *testing.T) {
	files := New()
	files.AllowNonUniqueKeys()
	files.SetVal("File", "/data/a.root")
	files.SetVal("File", "/data/b.root")

	r := New()
	r.SetVal("AlgType", "RunAlgs")
	r.SetVal("Conf", "fabs([Eta]) < 2.5 && [Pt] > 20")
	require.NoError(t, r.SetValueLong("NEvent", "100"))
	r.SetRegistry("InputFiles", files)

	var buf bytes.Buffer
	require.NoError(t, r.WriteXML(&buf))
	require.Contains(t, buf.String(), `<Registry unique="yes">`)
	require.Contains(t, buf.String(), `<Registry unique="no">`)

	back, err := ReadXML(&buf)
	require.NoError(t, err)
	require.True(t, r.Equal(back), "got:\n%s", back)
}

func TestXML_FileRoundTrip(t *testing.T) {
	r := New()
	r.SetVal("TreeName", "ntuple")
	path := t.TempDir() + "/sub/config.xml"

	require.NoError(t, r.WriteXMLFile(path))
	back, err := ReadXMLFile(path)
	require.NoError(t, err)
	require.True(t, r.Equal(back))
}

func TestReadXML_Errors(t *testing.T) {
	_, err := ReadXML(strings.NewReader(`<Registry><Key name="" type="string">x</Key></Registry>`))
	require.ErrorIs(t, err, ErrEmptyKey)

	_, err = ReadXML(strings.NewReader(`<Registry><Key name="A" type="blob">x</Key></Registry>`))
	require.Error(t, err)

	_, err = ReadXML(strings.NewReader(`<Registry><Key name="A" type="number">x</Key></Registry>`))
	require.ErrorIs(t, err, ErrNotNumber)

	_, err = ReadXML(strings.NewReader(`not xml`))
	require.Error(t, err)
}

func TestYAML_RoundTrip(t *testing.T) {
	files := New()
	files.AllowNonUniqueKeys()
	files.SetVal("File", "a.root")
	files.SetVal("File", "b.root")

	r := New()
	r.SetVal("Debug", "no")
	r.SetVal("Count", "42") // string that looks like a number
	require.NoError(t, r.SetValueDouble("Lumi", "20280.2"))
	r.SetRegistry("InputFiles", files)

	data, err := r.MarshalYAMLBytes()
	require.NoError(t, err)

	back, err := UnmarshalYAMLBytes(data)
	require.NoError(t, err)
	require.True(t, r.Equal(back), "yaml:\n%s", data)
}

func TestYAML_NullAndErrors(t *testing.T) {
	r, err := UnmarshalYAMLBytes([]byte("A:\nB: x\n"))
	require.NoError(t, err)
	val, ok := r.Get("A")
	require.True(t, ok)
	require.Empty(t, val)

	_, err = UnmarshalYAMLBytes([]byte("- x\n- y\n"))
	require.Error(t, err)

	_, err = UnmarshalYAMLBytes([]byte("just a string"))
	require.Error(t, err)
}

func genRegistry(depth int) *rapid.Generator[*Registry] {
	return rapid.Custom(func(t *rapid.T) *Registry {
		r := New()
		if rapid.Bool().Draw(t, "nonUnique") {
			r.AllowNonUniqueKeys()
		}
		n := rapid.IntRange(0, 5).Draw(t, "n")
		for i := 0; i < n; i++ {
			key := rapid.StringMatching(`[A-Za-z][A-Za-z0-9_]{0,8}`).Draw(t, "key")
			switch rapid.IntRange(0, 2).Draw(t, "kind") {
			case 0:
				r.SetVal(key, rapid.StringMatching(`[ -~]{0,20}`).Draw(t, "val"))
			case 1:
				_ = r.SetValueLong(key, strconv.FormatInt(rapid.Int64().Draw(t, "num"), 10))
			case 2:
				if depth > 0 {
					r.SetRegistry(key, genRegistry(depth-1).Draw(t, "sub"))
				} else {
					r.SetVal(key, "leaf")
				}
			}
		}
		return r
	})
}

func TestWriteXML_RejectsUnencodableText(t *testing.T) {
	tests := []struct {
		name string
		reg  func() *Registry
	}{
		{"control char value", func() *Registry {
			r := New()
			r.SetVal("Conf", "a\x01b")
			return r
		}},
		{"invalid utf8 value", func() *Registry {
			r := New()
			r.SetVal("Conf", "a\xffb")
			return r
		}},
		{"control char key", func() *Registry {
			r := New()
			r.SetVal("Bad\x02Key", "x")
			return r
		}},
		{"nested", func() *Registry {
			sub := New()
			sub.SetVal("CutConf", "\x00")
			r := New()
			r.SetRegistry("MuonPt", sub)
			return r
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := tt.reg().WriteXML(&buf)
			require.ErrorIs(t, err, ErrXMLText)
			require.Zero(t, buf.Len())
		})
	}
}

func TestXML_KeepsTabsAndNewlines(t *testing.T) {
	r := New()
	r.SetVal("Conf", "a\tb\nc")

	var buf bytes.Buffer
	require.NoError(t, r.WriteXML(&buf))
	back, err := ReadXML(&buf)
	require.NoError(t, err)
	v, _ := back.Get("Conf")
	require.Equal(t, "a\tb\nc", v)
}

func TestXML_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := genRegistry(2).Draw(t, "registry")

		var buf bytes.Buffer
		if err := r.WriteXML(&buf); err != nil {
			t.Fatalf("write: %v", err)
		}
		back, err := ReadXML(&buf)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !r.Equal(back) {
			t.Fatalf("round trip mismatch:\n%s\nvs\n%s", r, back)
		}
	})
}

func TestYAML_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := genRegistry(2).Draw(t, "registry")

		data, err := r.MarshalYAMLBytes()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		back, err := UnmarshalYAMLBytes(data)
		if err != nil {
			t.Fatalf("unmarshal: %v\n%s", err, data)
		}
		if !r.Equal(back) {
			t.Fatalf("round trip mismatch:\n%s", data)
		}
	})
}
