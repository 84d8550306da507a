package ownership

import "testing"

func TestSuggestIndex_Passthrough(t *testing.T) {
	l := New()
	if got := l.SuggestIndex(3); got != 3 {
		t.Errorf("SuggestIndex(3) unlocked = %d, want 3", got)
	}
	if got := l.SuggestIndex(-1); got != -1 {
		t.Errorf("SuggestIndex(-1) unlocked = %d, want -1", got)
	}
}

func TestSuggestIndex_LockPrecedence(t *testing.T) {
	l := New()
	l.Acquire("user-seek", 7)

	for _, candidate := range []int{-1, 0, 6, 8} {
		if got := l.SuggestIndex(candidate); got != 7 {
			t.Errorf("SuggestIndex(%d) while locked = %d, want 7", candidate, got)
		}
	}

	if !l.Release("user-seek") {
		t.Fatal("Release by the holder failed")
	}
	if got := l.SuggestIndex(2); got != 2 {
		t.Errorf("SuggestIndex(2) after release = %d, want 2", got)
	}
}

func TestRelease_WrongOwnerIsNoop(t *testing.T) {
	l := New()
	l.Acquire("user-seek", 4)

	if l.Release("auto-unlock-stale") {
		t.Error("Release by a non-holder succeeded")
	}
	if got := l.SuggestIndex(1); got != 4 {
		t.Errorf("SuggestIndex(1) = %d, want 4 (lock must survive)", got)
	}
}

func TestAcquire_OverwritesPriorLock(t *testing.T) {
	l := New()
	l.Acquire("first", 1)
	l.Acquire("second", 2)

	if got := l.SuggestIndex(9); got != 2 {
		t.Errorf("SuggestIndex(9) = %d, want 2 (latest lock wins)", got)
	}
	if l.Release("first") {
		t.Error("stale owner released the rewritten lock")
	}
	if !l.Release("second") {
		t.Error("current owner failed to release")
	}
}

func TestReset_ClearsAnyLock(t *testing.T) {
	l := New()
	l.Acquire("user-seek", 5)
	l.Reset()

	if l.Locked() {
		t.Error("lock survived reset")
	}
	if got := l.SuggestIndex(3); got != 3 {
		t.Errorf("SuggestIndex(3) after reset = %d, want 3", got)
	}
}
