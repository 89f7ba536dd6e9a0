package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const twoMasters = `
name: Demo
masters:
  - name: CPU
    script:
      - {op: write, addr: 0x20000000, data: 1}
      - {op: read, addr: 0x20000000}
      - {op: read, addr: 0x50000000}
  - name: DMA
    script:
      - {op: read, addr: 0x20000004, repeat: 4, stride: 4}
slaves:
  - name: SRAM
    base: 0x20000000
    size: 0x1000
    read_wait_states: 1
`

var _ = Describe("run", func() {
	var dir, file string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		file = filepath.Join(dir, "demo.yaml")
		Expect(os.WriteFile(file, []byte(twoMasters), 0o644)).To(Succeed())
	})

	It("should run a system until it is idle", func() {
		rep, err := runSystem(context.Background(),
			runOptions{configFile: file, skipAhead: true}, GinkgoWriter)
		Expect(err).NotTo(HaveOccurred())

		Expect(rep.Idle).To(BeTrue())
		Expect(rep.Masters).To(HaveLen(2))
		Expect(rep.Masters[0].Name).To(Equal("Demo.CPU"))
		Expect(rep.Masters[0].Completed).To(Equal(3))
		Expect(rep.Masters[0].Errors).To(Equal(1))
		Expect(rep.Masters[1].Completed).To(Equal(4))
		Expect(rep.Masters[1].Denials).To(BeNumerically(">", 0))
		Expect(rep.Masters[1].AvgLatency).To(BeNumerically(">", 0))
		Expect(float64(rep.Masters[1].MaxLatency)).To(
			BeNumerically(">=", rep.Masters[1].AvgLatency))
		Expect(rep.Masters[1].Busy).To(BeNumerically(">", 0))

		out := new(bytes.Buffer)
		Expect(rep.write(out)).To(Succeed())
		Expect(out.String()).To(HavePrefix("idle after"))
		Expect(out.String()).To(ContainSubstring("Demo.DMA"))
	})

	It("should stop after the given number of cycles", func() {
		rep, err := runSystem(context.Background(),
			runOptions{configFile: file, cycles: 2}, GinkgoWriter)
		Expect(err).NotTo(HaveOccurred())

		Expect(rep.Idle).To(BeFalse())
		Expect(rep.Cycles).To(Equal(uint64(2)))
		Expect(rep.Masters[1].Completed).To(BeNumerically("<", 4))
	})

	It("should record into the output file", func() {
		output := filepath.Join(dir, "rec")

		_, err := runSystem(context.Background(),
			runOptions{configFile: file, record: true, output: output}, GinkgoWriter)
		Expect(err).NotTo(HaveOccurred())

		Expect(output + ".sqlite3").To(BeAnExistingFile())
	})

	It("should serve a monitor while running", func() {
		rep, err := runSystem(context.Background(),
			runOptions{configFile: file, monitor: true}, GinkgoWriter)
		Expect(err).NotTo(HaveOccurred())
		Expect(rep.Idle).To(BeTrue())
	})

	DescribeTable("should reject conflicting options",
		func(o runOptions) {
			o.configFile = file

			_, err := runSystem(context.Background(), o, GinkgoWriter)
			Expect(err).To(HaveOccurred())
		},
		Entry("cycles with skip-ahead", runOptions{cycles: 3, skipAhead: true}),
		Entry("output without recording", runOptions{output: "x"}),
		Entry("port without monitor", runOptions{port: 9000}),
	)

	It("should report description errors", func() {
		Expect(os.WriteFile(file, []byte("masters: []\n"), 0o644)).To(Succeed())

		_, err := runSystem(context.Background(),
			runOptions{configFile: file}, GinkgoWriter)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("check", func() {
	It("should summarize a valid description", func() {
		file := filepath.Join(GinkgoT().TempDir(), "demo.yaml")
		Expect(os.WriteFile(file, []byte(twoMasters), 0o644)).To(Succeed())

		out := new(bytes.Buffer)
		rootCmd.SetOut(out)
		rootCmd.SetArgs([]string{"check", file})
		DeferCleanup(func() {
			rootCmd.SetOut(nil)
			rootCmd.SetArgs(nil)
		})

		Expect(rootCmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("2 masters, 1 slaves, 7 accesses"))
	})
})
