package logging

import "testing"

func TestNewProgressSamplerDefaults(t *testing.T) {
	if s := NewProgressSampler(0); s.bucketSize != 25 || s.lastBucket != -1 {
		t.Fatalf("unexpected defaults %+v", s)
	}
	if s := NewProgressSampler(10); s.bucketSize != 10 {
		t.Fatalf("custom bucket ignored: %+v", s)
	}
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	var logged []int
	for done := 1; done <= 10; done++ {
		if s.ShouldLog(done, 10) {
			logged = append(logged, done)
		}
	}
	// 10% (bucket 0), 30% (1), 50% (2), 80% (3), 100% (final)
	want := []int{1, 3, 5, 8, 10}
	if len(logged) != len(want) {
		t.Fatalf("logged %v, want %v", logged, want)
	}
	for i := range want {
		if logged[i] != want[i] {
			t.Fatalf("logged %v, want %v", logged, want)
		}
	}
}

func TestProgressSamplerEdgeCases(t *testing.T) {
	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog(1, 2) {
		t.Fatal("nil sampler should always log")
	}
	s := NewProgressSampler(50)
	if s.ShouldLog(0, 0) {
		t.Fatal("zero total should not log")
	}
	if !s.ShouldLog(1, 1) {
		t.Fatal("single-step loop should log its only step")
	}
	if s.ShouldLog(1, 1) {
		t.Fatal("repeat of the final step should not log")
	}
	if Percent(1, 3) != 33 || Percent(1, 0) != 0 {
		t.Fatal("unexpected Percent")
	}
}
