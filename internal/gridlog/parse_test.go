package gridlog_test

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gridlog/internal/gridlog"
)

const exampleLog = `junk line
time = 5
1 2
3 4
some CUDA debug text
time = 6
9 9
9 9
`

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read past cutoff")
}

func parseString(in string, opts gridlog.Options) (*gridlog.Series, error) {
	return gridlog.Parse(strings.NewReader(in), opts)
}

var _ = Describe("Parse", func() {
	opts := gridlog.Options{Height: 2, Width: 2}

	It("extracts the example log", func() {
		s, err := parseString(exampleLog, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Timesteps).To(Equal([]int64{5, 6}))
		Expect(s.Data).To(Equal([]int64{1, 2, 3, 4, 9, 9, 9, 9}))
		Expect(s.Grid(0).Row(1)).To(Equal([]int64{3, 4}))
		Expect(s.At(1, 1, 0)).To(Equal(int64(9)))
	})

	It("keeps the row-count invariant", func() {
		s, err := parseString(exampleLog, opts)
		Expect(err).NotTo(HaveOccurred())
		t, h, w := s.Shape()
		Expect(t).To(Equal(len(s.Timesteps)))
		Expect(h).To(Equal(2))
		Expect(w).To(Equal(2))
		Expect(s.Validate()).To(Succeed())
	})

	It("ignores noise anywhere", func() {
		noisy := `[init] launching kernel <<<32,32>>>

1 2 3
time = 5
cudaMemcpy ok
1 2


3.0 4
3 4
debug: residual=0.01
time = 6
9 9
x y
9 9
trailing 1 2 3
1.5 1.5
`
		clean, err := parseString(exampleLog, opts)
		Expect(err).NotTo(HaveOccurred())
		s, err := parseString(noisy, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Equal(clean)).To(BeTrue())
	})

	It("discards a block truncated by end of input", func() {
		s, err := parseString(exampleLog+"time = 7\n1 1\n", opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Timesteps).To(Equal([]int64{5, 6}))
		Expect(s.Data).To(HaveLen(8))
	})

	It("accepts duplicate and out-of-order markers", func() {
		in := "time = 3\n1 1\n1 1\ntime = 1\n2 2\n2 2\ntime = 3\n3 3\n3 3\n"
		s, err := parseString(in, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Timesteps).To(Equal([]int64{3, 1, 3}))
	})

	It("handles CRLF and invalid UTF-8", func() {
		in := "time = 5\r\n1 2\r\n3\xff 4\r\n"
		s, err := parseString(in, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Data).To(Equal([]int64{1, 2, 3, 4}))
	})

	It("handles a final line without newline", func() {
		s, err := parseString("time = 5\n1 2\n3 4", opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Len()).To(Equal(1))
	})

	Context("when a marker interrupts a block", func() {
		in := "time = 1\n1 2\ntime = 2\n3 4\n5 6\n"

		It("skips the marker as noise by default", func() {
			s, err := parseString(in, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Timesteps).To(Equal([]int64{1}))
			Expect(s.Data).To(Equal([]int64{1, 2, 3, 4}))
		})

		It("restarts on the new marker with MarkerRestarts", func() {
			o := opts
			o.Policy = gridlog.MarkerRestarts
			s, err := parseString(in, o)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Timesteps).To(Equal([]int64{2}))
			Expect(s.Data).To(Equal([]int64{3, 4, 5, 6}))
		})
	})

	Context("with a cutoff", func() {
		It("returns exactly k blocks in order", func() {
			o := opts
			o.MaxSteps = 1
			s, stats, err := gridlog.Scan(strings.NewReader(exampleLog), o)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Timesteps).To(Equal([]int64{5}))
			Expect(stats.CutOff).To(BeTrue())
			Expect(stats.LinesRead).To(Equal(4))
		})

		It("never reads past the k-th block", func() {
			o := opts
			o.MaxSteps = 2
			r := io.MultiReader(strings.NewReader(exampleLog), failingReader{})
			s, err := gridlog.Parse(r, o)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Len()).To(Equal(2))
		})

		It("surfaces read errors without a cutoff", func() {
			r := io.MultiReader(strings.NewReader(exampleLog), failingReader{})
			_, err := gridlog.Parse(r, opts)
			Expect(err).To(MatchError("read past cutoff"))
		})
	})

	Context("when nothing is extractable", func() {
		DescribeTable("fails with the empty series error",
			func(in string) {
				_, err := parseString(in, opts)
				Expect(err).To(MatchError(gridlog.ErrEmptySeries))

				var empty *gridlog.EmptySeriesError
				Expect(errors.As(err, &empty)).To(BeTrue())
				Expect(empty.Height).To(Equal(2))
				Expect(err.Error()).To(ContainSubstring("2 rows of 2 integers"))
			},
			Entry("empty input", ""),
			Entry("no markers", "1 2\n3 4\n"),
			Entry("markers without rows", "time = 1\ntime = 2\nnoise\n"),
			Entry("wrong width", "time = 1\n1 2 3\n4 5 6\n"),
		)
	})

	It("counts aggregate stats", func() {
		_, stats, err := gridlog.Scan(strings.NewReader(exampleLog+"time = 9\n"), opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.MarkersSeen).To(Equal(3))
		Expect(stats.BlocksKept).To(Equal(2))
		Expect(stats.BlocksDropped).To(Equal(1))
		Expect(stats.SkippedLines).To(Equal(2))
		Expect(stats.LinesRead).To(Equal(9))
	})

	DescribeTable("rejects invalid options",
		func(o gridlog.Options) {
			_, err := parseString(exampleLog, o)
			Expect(err).To(MatchError(gridlog.ErrInvalidOptions))
		},
		Entry("zero height", gridlog.Options{Height: 0, Width: 2}),
		Entry("negative width", gridlog.Options{Height: 2, Width: -1}),
		Entry("negative cutoff", gridlog.Options{Height: 2, Width: 2, MaxSteps: -1}),
	)
})

var _ = Describe("ParseFile", func() {
	It("parses a file on disk", func() {
		path := filepath.Join(GinkgoT().TempDir(), "log.txt")
		Expect(os.WriteFile(path, []byte(exampleLog), 0644)).To(Succeed())

		s, err := gridlog.ParseFile(path, gridlog.Options{Height: 2, Width: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Timesteps).To(Equal([]int64{5, 6}))
	})

	It("propagates open errors", func() {
		_, err := gridlog.ParseFile(filepath.Join(GinkgoT().TempDir(), "missing.txt"), gridlog.Options{Height: 2, Width: 2})
		Expect(errors.Is(err, fs.ErrNotExist)).To(BeTrue())
	})
})

var _ = Describe("ParseMarkerPolicy", func() {
	It("maps names", func() {
		p, err := gridlog.ParseMarkerPolicy("skip")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(gridlog.MarkerSkipped))

		p, err = gridlog.ParseMarkerPolicy("restart")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(gridlog.MarkerRestarts))

		p, err = gridlog.ParseMarkerPolicy("")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(gridlog.MarkerSkipped))
		Expect(gridlog.Options{}.Policy).To(Equal(gridlog.MarkerSkipped))

		_, err = gridlog.ParseMarkerPolicy("never")
		Expect(err).To(MatchError(gridlog.ErrInvalidOptions))
	})
})
