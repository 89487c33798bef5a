package usecase

import "testing"

func TestInflightGuard(t *testing.T) {
	g := NewInflightGuard()

	if !g.Acquire("job-1") {
		t.Fatalf("first acquire should succeed")
	}
	if g.Acquire("job-1") {
		t.Fatalf("second acquire for the same job should fail")
	}
	if !g.Acquire("job-2") {
		t.Fatalf("other jobs are independent")
	}

	g.Release("job-1")
	if !g.Acquire("job-1") {
		t.Fatalf("acquire after release should succeed")
	}
}
