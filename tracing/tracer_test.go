package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LatencyTracer", func() {
	var (
		clock *fakeClock
		t     *LatencyTracer
	)

	BeforeEach(func() {
		clock = &fakeClock{}
		t = NewLatencyTracer(clock, KindIs(KindRead))
	})

	It("should report zeros before any task ended", func() {
		t.StartTask(Task{ID: "1", Kind: KindRead})

		Expect(t.TotalCount()).To(BeZero())
		Expect(t.AverageCycles()).To(BeZero())
	})

	It("should measure overlapping tasks separately", func() {
		t.StartTask(Task{ID: "1", Kind: KindRead})
		clock.cycle = 1
		t.StartTask(Task{ID: "2", Kind: KindRead})
		t.StartTask(Task{ID: "3", Kind: KindWrite})
		clock.cycle = 3
		t.EndTask(Task{ID: "1"})
		t.EndTask(Task{ID: "3"})
		clock.cycle = 4
		t.EndTask(Task{ID: "2"})
		t.EndTask(Task{ID: "unknown"})

		Expect(t.TotalCount()).To(Equal(uint64(2)))
		Expect(t.TotalCycles()).To(Equal(uint64(6)))
		Expect(t.AverageCycles()).To(BeNumerically("~", 3.0))
		Expect(t.MinCycles()).To(Equal(uint64(3)))
		Expect(t.MaxCycles()).To(Equal(uint64(3)))
	})

	It("should track the shortest and the longest task", func() {
		t.StartTask(Task{ID: "1", Kind: KindRead})
		t.StartTask(Task{ID: "2", Kind: KindRead})
		clock.cycle = 2
		t.EndTask(Task{ID: "1"})
		clock.cycle = 7
		t.EndTask(Task{ID: "2"})

		Expect(t.MinCycles()).To(Equal(uint64(2)))
		Expect(t.MaxCycles()).To(Equal(uint64(7)))
		Expect(t.AverageCycles()).To(BeNumerically("~", 4.5))
	})
})

var _ = Describe("BusyTimeTracer", func() {
	var (
		clock *fakeClock
		t     *BusyTimeTracer
	)

	BeforeEach(func() {
		clock = &fakeClock{}
		t = NewBusyTimeTracer(clock, nil)
	})

	span := func(id string, start, end uint64) {
		clock.cycle = start
		t.StartTask(Task{ID: id})
		clock.cycle = end
		t.EndTask(Task{ID: id})
	}

	It("should count one task", func() {
		span("1", 1, 2)

		Expect(t.BusyCycles()).To(Equal(uint64(1)))
	})

	It("should add separate tasks", func() {
		span("1", 1, 2)
		span("2", 3, 4)

		Expect(t.BusyCycles()).To(Equal(uint64(2)))
	})

	It("should count overlapping tasks once", func() {
		clock.cycle = 1
		t.StartTask(Task{ID: "1"})
		clock.cycle = 2
		t.StartTask(Task{ID: "2"})
		clock.cycle = 3
		t.EndTask(Task{ID: "1"})

		Expect(t.BusyCycles()).To(Equal(uint64(0)))

		clock.cycle = 5
		t.EndTask(Task{ID: "2"})

		Expect(t.BusyCycles()).To(Equal(uint64(4)))
	})

	It("should count nested tasks once", func() {
		clock.cycle = 1
		t.StartTask(Task{ID: "1"})
		clock.cycle = 2
		t.StartTask(Task{ID: "2"})
		clock.cycle = 3
		t.EndTask(Task{ID: "2"})
		clock.cycle = 6
		t.EndTask(Task{ID: "1"})

		Expect(t.BusyCycles()).To(Equal(uint64(5)))
	})

	It("should close the running tasks on termination", func() {
		span("1", 0, 2)
		clock.cycle = 4
		t.StartTask(Task{ID: "2"})

		t.TerminateAllTasks(7)

		Expect(t.BusyCycles()).To(Equal(uint64(5)))
	})
})

var _ = Describe("StepCountTracer", func() {
	It("should count steps and the tasks that reach them", func() {
		t := NewStepCountTracer(KindIs(KindRead))

		t.StartTask(Task{ID: "1", Kind: KindRead})
		t.StartTask(Task{ID: "2", Kind: KindWrite})
		t.StepTask(Task{ID: "1", Steps: []TaskStep{{What: StepDenied}}})
		t.StepTask(Task{ID: "1", Steps: []TaskStep{{What: StepDenied}}})
		t.StepTask(Task{ID: "1", Steps: []TaskStep{{What: StepAccepted}}})
		t.StepTask(Task{ID: "2", Steps: []TaskStep{{What: StepDenied}}})
		t.EndTask(Task{ID: "1"})

		Expect(t.GetStepNames()).To(Equal([]string{StepDenied, StepAccepted}))
		Expect(t.GetStepCount(StepDenied)).To(Equal(uint64(2)))
		Expect(t.GetTaskCount(StepDenied)).To(Equal(uint64(1)))
		Expect(t.GetTaskCount(StepAccepted)).To(Equal(uint64(1)))
	})
})
