package alg

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/anpconf/internal/cut"
	"github.com/zjrosen/anpconf/internal/registry"
	"github.com/zjrosen/anpconf/internal/testutil"
)

func TestConfigRegistry_EndToEnd(t *testing.T) {
	a := New("A", "T1")
	a.AddAlg(New("B", "T2"))
	require.NoError(t, a.SetPar("Debug", Bool(false)))

	reg, err := a.ConfigRegistry()
	require.NoError(t, err)

	require.Equal(t, "T1", text(t, reg, "AlgType"))
	require.Equal(t, "A", text(t, reg, "AlgName"))
	require.Equal(t, "no", text(t, reg, "Debug"))
	require.Equal(t, "B", text(t, reg, "AlgList"))

	b, ok := reg.GetRegistry("B")
	require.True(t, ok)
	require.Equal(t, "T2", text(t, b, "AlgType"))
	require.Equal(t, "", text(t, b, "AlgList"))
}

func TestConfigRegistry_AlgListOrder(t *testing.T) {
	a := New("top", "RunAlgs")
	a.AddAlg(Algs{New("X", "T"), New("Y", "T")})

	reg, err := a.ConfigRegistry()
	require.NoError(t, err)
	require.Equal(t, "X, Y", text(t, reg, "AlgList"))
	require.True(t, reg.KeyExists("X"))
	require.True(t, reg.KeyExists("Y"))
	require.Equal(t, []string{"AlgType", "AlgName", "X", "Y", "AlgList"}, reg.Keys())
}

func TestConfigRegistry_ParamsFirstAndFresh(t *testing.T) {
	a := New("A", "T1")
	require.NoError(t, a.SetPar("NEvent", Int(10)))

	first, err := a.ConfigRegistry()
	require.NoError(t, err)
	first.SetVal("NEvent", "changed")

	second, err := a.ConfigRegistry()
	require.NoError(t, err)
	require.Equal(t, "10", text(t, second, "NEvent"))
	require.Equal(t, "NEvent", second.Keys()[0])
}

func TestConfigRegistry_Idempotent(t *testing.T) {
	a := New("A", "T1")
	a.AddAlg(New("B", "T2"))
	require.True(t, a.AddSelectKey("trig", KeyOR, "[HLT_mu20] > 0"))

	first, err := a.ConfigRegistry()
	require.NoError(t, err)
	second, err := a.ConfigRegistry()
	require.NoError(t, err)
	require.True(t, first.Equal(second))
}

func TestConfigRegistry_DuplicateChildIsFatal(t *testing.T) {
	testutil.CaptureLog(t)

	a := New("A", "T1")
	require.NoError(t, a.SetPar("B", String("param")))
	a.AddAlg(New("B", "T2"))

	_, err := a.ConfigRegistry()
	require.ErrorIs(t, err, ErrDuplicateChild)
}

func TestConfigRegistry_SelectKeyCollisionSkipped(t *testing.T) {
	logs := testutil.CaptureLog(t)

	a := New("collide", "T1")
	require.NoError(t, a.SetPar("trig", String("param")))
	require.True(t, a.AddSelectKey("trig", KeyAND, "[X] > 1"))

	reg, err := a.ConfigRegistry()
	require.NoError(t, err)
	require.Equal(t, "param", text(t, reg, "trig"))
	require.Contains(t, logs.String(), "SelectKey key already exists key=trig")
}

func TestConfigRegistry_Cycle(t *testing.T) {
	a := New("cycA", "T")
	b := New("cycB", "T")
	a.AddAlg(b)
	b.AddAlg(a)

	_, err := a.ConfigRegistry()
	require.ErrorIs(t, err, ErrCycle)
}

func TestConfigRegistry_SharedChild(t *testing.T) {
	shared := New("shared", "T")
	a := New("A", "T")
	a.AddAlg(Algs{New("L", "T"), New("R", "T")})
	a.GetAlg("L").AddAlg(shared)
	a.GetAlg("R").AddAlg(shared)

	_, err := a.ConfigRegistry()
	require.NoError(t, err)
}

func TestSetAlg_DuplicateRejected(t *testing.T) {
	logs := testutil.CaptureLog(t)

	a := New("dupParent", "T")
	require.True(t, a.SetAlg("X", New("X", "T1")))
	require.False(t, a.SetAlg("X", New("X", "T2")))

	require.Len(t, a.Children(), 1)
	require.Equal(t, "T1", a.GetAlg("X").Type())
	require.Contains(t, logs.String(), "[WARN] [alg] dupParent: SetAlg - key already exists key=X")
}

func TestSetAlg_Nil(t *testing.T) {
	testutil.CaptureLog(t)

	a := New("A", "T")
	require.False(t, a.SetAlg("X", nil))
	a.AddAlg(nil)
	var nilAlg *AlgConfig
	a.AddAlg(nilAlg)
	a.AddAlg(Algs{nil, New("Y", "T")})

	require.Equal(t, []string{"Y"}, a.ChildKeys())
}

func TestAddAlg_NestedLists(t *testing.T) {
	a := New("A", "T")
	a.AddAlg(Algs{New("X", "T"), Algs{New("Y", "T"), New("Z", "T")}})
	require.Equal(t, []string{"X", "Y", "Z"}, a.ChildKeys())
}

func TestSetAlg_KeyDiffersFromName(t *testing.T) {
	a := New("A", "T")
	require.True(t, a.SetAlg("alias", New("real", "T")))

	reg, err := a.ConfigRegistry()
	require.NoError(t, err)
	sub, ok := reg.GetRegistry("alias")
	require.True(t, ok)
	require.Equal(t, "real", text(t, sub, "AlgName"))
}

func TestGetAlg_Missing(t *testing.T) {
	require.Nil(t, New("A", "T").GetAlg("none"))
}

func TestSetPar_LastWriteWins(t *testing.T) {
	a := New("A", "T")
	require.NoError(t, a.SetPar("Cut", Float(2.5)))
	require.NoError(t, a.SetKey("Cut", Float(3.5)))

	val, ok := a.Par("Cut")
	require.True(t, ok)
	require.Equal(t, "3.5", val)
	require.Equal(t, 1, a.Params().Len())
}

func TestSetPar_UnknownValue(t *testing.T) {
	a := New("A", "T")
	require.ErrorIs(t, a.SetPar("Bad", nil), ErrUnknownValue)
}

func TestDelPar(t *testing.T) {
	a := New("A", "T")
	require.NoError(t, a.SetPar("Debug", Bool(true)))
	a.DelPar("Debug")
	a.DelKey("Missing")

	_, ok := a.Par("Debug")
	require.False(t, ok)
}

func TestSetGlobalPar_Recursive(t *testing.T) {
	a := New("A", "T")
	b := New("B", "T")
	c := New("C", "T")
	b.AddAlg(c)
	a.AddAlg(b)

	require.NoError(t, a.SetGlobalPar("Debug", Bool(true)))

	for _, n := range []*AlgConfig{a, b, c} {
		val, ok := n.Par("Debug")
		require.True(t, ok, n.Name())
		require.Equal(t, "yes", val)
	}
}

func TestSetGlobalPar_LaterChildNotUpdated(t *testing.T) {
	a := New("A", "T")
	require.NoError(t, a.SetGlobalPar("Debug", Bool(true)))
	late := New("late", "T")
	a.AddAlg(late)

	_, ok := late.Par("Debug")
	require.False(t, ok)
}

func TestTarget(t *testing.T) {
	a := New("A", "T")
	require.Equal(t, "", a.Target())
	a.SetTarget("muons")
	require.Equal(t, "muons", a.Target())
}

func TestAddSelectKey_CreatesAndAppends(t *testing.T) {
	a := New("A", "T")
	require.True(t, a.AddSelectKey("muKey", KeyAND, "[Pt] > 20"))
	require.True(t, a.AddSelectKeyDecision("muKey", KeyAND, "[Eta] < 2.5", false))

	keys := a.SelectKeys()
	require.Len(t, keys, 1)
	require.Equal(t, KeyAND, keys[0].Type())
	require.Equal(t, []Selection{
		{Expr: "[Pt] > 20", Decision: true},
		{Expr: "[Eta] < 2.5", Decision: false},
	}, keys[0].Selections())
}

func TestAddSelectKey_TypeMismatch(t *testing.T) {
	logs := testutil.CaptureLog(t)

	a := New("mismatch", "T")
	require.True(t, a.AddSelectKey("k", KeyAND, "[A] > 1"))
	require.False(t, a.AddSelectKey("k", KeyOR, "[B] > 1"))

	sels := a.GetSelectKey("k", KeyAND).Selections()
	require.Len(t, sels, 1)
	require.Equal(t, "[A] > 1", sels[0].Expr)
	require.Contains(t, logs.String(), "key type mismatch")
}

func TestAddSelectKey_UnknownTypeAndEmptyKey(t *testing.T) {
	testutil.CaptureLog(t)

	a := New("A", "T")
	require.False(t, a.AddSelectKey("k", KeyType("XOR"), "[A] > 1"))
	require.False(t, a.AddSelectKey("", KeyAND, "[A] > 1"))
	require.Nil(t, a.GetSelectKey("k", KeyType("XOR")))
	require.Empty(t, a.SelectKeys())
}

func TestAddSelectKeyObject(t *testing.T) {
	testutil.CaptureLog(t)

	k, err := NewSelectKey("prebuilt", KeyOR)
	require.NoError(t, err)
	k.Add("[X] > 1", true)

	a := New("A", "T")
	require.True(t, a.AddSelectKeyObject(k))
	require.False(t, a.AddSelectKeyObject(k))
	require.False(t, a.AddSelectKeyObject(nil))
	require.Same(t, k, a.GetSelectKey("prebuilt", KeyOR))
}

func TestSelectKey_ConfigRegistry(t *testing.T) {
	a := New("A", "T")
	a.AddSelectKey("muKey", KeyAND, "[Pt] > 20")
	a.AddSelectKeyDecision("muKey", KeyAND, "[Eta] < 2.5", false)

	reg, err := a.ConfigRegistry()
	require.NoError(t, err)

	key, ok := reg.GetRegistry("muKey")
	require.True(t, ok)
	require.Equal(t, "muKey", text(t, key, "KeyName"))
	require.Equal(t, "AND", text(t, key, "KeyType"))
	require.Equal(t, "Select0,Select1", text(t, key, "KeyList"))

	sel, ok := key.GetRegistry("Select1")
	require.True(t, ok)
	require.Equal(t, "[Eta] < 2.5", text(t, sel, "Selection"))
	require.Equal(t, "no", text(t, sel, "Decision"))
}

func TestNewSelectKey_Errors(t *testing.T) {
	_, err := NewSelectKey("k", KeyType("and"))
	require.ErrorIs(t, err, ErrUnknownKeyType)
	_, err = NewSelectKey("", KeyAND)
	require.Error(t, err)

	kt, err := ParseKeyType("OR")
	require.NoError(t, err)
	require.Equal(t, KeyOR, kt)
}

func TestAddCuts(t *testing.T) {
	a := New("selectMuons", "SelectCand")
	cuts := []*cut.Item{
		cut.MustNew("pt", "[Pt] > 20"),
		cut.MustNew("eta", "[Eta] < 2.5", cut.WithAbs()),
	}
	require.NoError(t, a.AddCuts("CutCand", cuts))

	reg, err := a.ConfigRegistry()
	require.NoError(t, err)
	require.Equal(t, "pt,eta", text(t, reg, "CutCand"))

	sub, ok := reg.GetRegistry("CutCandeta")
	require.True(t, ok)
	require.Equal(t, "yes", text(t, sub, "CutUseAbs"))
}

func TestAddCuts_Duplicate(t *testing.T) {
	a := New("A", "T")
	err := a.AddCuts("Cut", []*cut.Item{
		cut.MustNew("pt", "[Pt] > 20"),
		cut.MustNew("pt", "[Pt] > 30"),
	})
	require.ErrorIs(t, err, ErrDuplicateCut)
	require.Equal(t, 0, a.Params().Len())
}

func TestAddCutsToRegistry(t *testing.T) {
	reg := registry.New()
	require.NoError(t, AddCutsToRegistry(reg, "Cuts", nil))
	require.Equal(t, "", text(t, reg, "Cuts"))

	require.Error(t, AddCutsToRegistry(nil, "Cuts", nil))
	require.Error(t, AddCutsToRegistry(reg, "Cuts", []*cut.Item{nil}))
}

func TestPrint_LogsTree(t *testing.T) {
	logs := testutil.CaptureLog(t)

	a := New("printTop", "RunAlgs")
	a.AddAlg(New("printChild", "T"))
	a.Print()

	out := logs.String()
	require.Contains(t, out, "printTop: AlgConfig: printTop type=RunAlgs")
	require.Contains(t, out, "printChild: AlgConfig:   printChild type=T")
}

func TestConfigRegistry_AlgListProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfDistinct(
			rapid.StringMatching(`c[A-Za-z0-9]{0,6}`),
			func(s string) string { return s },
		).Draw(t, "names")

		a := New("propTop", "T")
		for _, n := range names {
			a.AddAlg(New(n, "T"))
		}
		// re-adding every name is rejected
		for _, n := range names {
			if a.SetAlg(n, New(n, "T")) {
				t.Fatalf("duplicate %s accepted", n)
			}
		}

		reg, err := a.ConfigRegistry()
		if err != nil {
			t.Fatalf("export: %v", err)
		}
		got, _ := reg.GetVec("AlgList")
		if len(got) != len(names) {
			t.Fatalf("AlgList %v, want %v", got, names)
		}
		for i := range names {
			if got[i] != names[i] || !reg.KeyExists(names[i]) {
				t.Fatalf("AlgList %v, want %v", got, names)
			}
		}
	})
}
