package kvcache

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dcvla/vitcache/ml"
)

func mergeInputs(t *testing.T, shape ...int) (curK, curV, cachedK, cachedV ml.Tensor) {
	t.Helper()
	return newTensor(t, 0, shape...), newTensor(t, 1000, shape...),
		newTensor(t, -1000, shape...), newTensor(t, -2000, shape...)
}

func TestMergePerPatch(t *testing.T) {
	curK, curV, cachedK, cachedV := mergeInputs(t, 1, 2, 4, 3)
	mask := ReuseMask{true, false, true, false}

	k, v, err := Merge(curK, curV, cachedK, cachedV, mask)
	if err != nil {
		t.Fatal(err)
	}

	check := func(name string, got, cur, cached ml.Tensor) {
		g, c, cc := got.Floats(), cur.Floats(), cached.Floats()
		for h := 0; h < 2; h++ {
			for p := 0; p < 4; p++ {
				for d := 0; d < 3; d++ {
					i := (h*4+p)*3 + d
					want := c[i]
					if mask[p] {
						want = cc[i]
					}
					if g[i] != want {
						t.Errorf("%s[0,%d,%d,%d] = %v, erwartet %v", name, h, p, d, g[i], want)
					}
				}
			}
		}
	}

	check("key", k, curK, cachedK)
	check("value", v, curV, cachedV)
}

func TestMergeAllFalseAllTrue(t *testing.T) {
	curK, curV, cachedK, cachedV := mergeInputs(t, 2, 3, 5, 4)

	k, v, err := Merge(curK, curV, cachedK, cachedV, NewReuseMask(5))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(curK.Floats(), k.Floats()); diff != "" {
		t.Errorf("alle false: key (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(curV.Floats(), v.Floats()); diff != "" {
		t.Errorf("alle false: value (-want +got):\n%s", diff)
	}

	k, v, err = Merge(curK, curV, cachedK, cachedV, NewReuseMask(5).Invert())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cachedK.Floats(), k.Floats()); diff != "" {
		t.Errorf("alle true: key (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(cachedV.Floats(), v.Floats()); diff != "" {
		t.Errorf("alle true: value (-want +got):\n%s", diff)
	}
}

func TestMergeNilMask(t *testing.T) {
	curK, curV, _, _ := mergeInputs(t, 1, 1, 3, 2)

	k, v, err := Merge(curK, curV, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if k != curK || v != curV {
		t.Error("ohne Maske sollten die aktuellen Tensoren zurueckkommen")
	}
}

func TestMergeEmptyPatches(t *testing.T) {
	curK, curV, cachedK, cachedV := mergeInputs(t, 1, 2, 0, 3)

	k, v, err := Merge(curK, curV, cachedK, cachedV, ReuseMask{})
	if err != nil {
		t.Fatal(err)
	}
	if len(k.Floats()) != 0 || len(v.Floats()) != 0 {
		t.Errorf("leere Ausgabe erwartet: %v %v", k.Shape(), v.Shape())
	}
	if diff := cmp.Diff([]int{1, 2, 0, 3}, k.Shape()); diff != "" {
		t.Errorf("Form (-want +got):\n%s", diff)
	}
}

func TestMergeErrors(t *testing.T) {
	curK, curV, cachedK, cachedV := mergeInputs(t, 1, 2, 4, 3)
	other := newTensor(t, 0, 1, 2, 5, 3)

	cases := []struct {
		name                         string
		curK, curV, cachedK, cachedV ml.Tensor
		mask                         ReuseMask
		want                         error
	}{
		{"value shape", curK, other, cachedK, cachedV, NewReuseMask(4), ErrShapeMismatch},
		{"cached key shape", curK, curV, other, cachedV, NewReuseMask(4), ErrShapeMismatch},
		{"cached value shape", curK, curV, cachedK, other, NewReuseMask(4), ErrShapeMismatch},
		{"rank", newTensor(t, 0, 4, 3), curV, cachedK, cachedV, NewReuseMask(4), ErrShapeMismatch},
		{"nil cached", curK, curV, nil, cachedV, NewReuseMask(4), ErrNilTensor},
		{"short mask", curK, curV, cachedK, cachedV, NewReuseMask(3), ErrMaskLength},
		{"long mask", curK, curV, cachedK, cachedV, NewReuseMask(5), ErrMaskLength},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Merge(tt.curK, tt.curV, tt.cachedK, tt.cachedV, tt.mask)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, erwartet %v", err, tt.want)
			}
		})
	}

	_, _, err := Merge(curK, curV, cachedK, cachedV, NewReuseMask(3))
	var lenErr *MaskLengthError
	if !errors.As(err, &lenErr) || lenErr.Mask != 3 || lenErr.Patches != 4 {
		t.Errorf("MaskLengthError = %+v", lenErr)
	}
}

func TestMergeWithCache(t *testing.T) {
	c := NewCache()
	k0, v0, _, _ := mergeInputs(t, 1, 2, 4, 3)
	update(t, c, 0, k0, v0)

	k1 := newTensor(t, 500, 1, 2, 4, 3)
	v1 := newTensor(t, 600, 1, 2, 4, 3)
	cached, ok := c.Get(0)
	if !ok {
		t.Fatal("Layer 0 fehlt")
	}

	mk, mv, err := Merge(k1, v1, cached.Key, cached.Value, ReuseMask{false, true, false, false})
	if err != nil {
		t.Fatal(err)
	}
	update(t, c, 0, mk, mv)

	e, _ := c.Get(0)
	got := e.Key.Floats()
	want := k1.Floats()
	copy(want[3:6], k0.Floats()[3:6])
	copy(want[15:18], k0.Floats()[15:18])
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Key nach Merge+Update (-want +got):\n%s", diff)
	}
}
