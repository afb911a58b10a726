package gridlog_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gridlog/internal/gridlog"
)

var _ = Describe("MatchMarker", func() {
	DescribeTable("marker lines",
		func(line string, want int64) {
			t, ok := gridlog.MatchMarker(line)
			Expect(ok).To(BeTrue())
			Expect(t).To(Equal(want))
		},
		Entry("plain", "time = 5", int64(5)),
		Entry("no spaces", "time=12", int64(12)),
		Entry("tabs", "time\t=\t7", int64(7)),
		Entry("trailing text", "time = 300 (dt=0.1)", int64(300)),
		Entry("prefixed text", "[rank 0] time = 9", int64(9)),
		Entry("first match wins", "time = 1 time = 2", int64(1)),
		Entry("zero", "time = 0", int64(0)),
	)

	DescribeTable("non-marker lines",
		func(line string) {
			_, ok := gridlog.MatchMarker(line)
			Expect(ok).To(BeFalse())
		},
		Entry("empty", ""),
		Entry("upper case", "TIME = 5"),
		Entry("word prefix", "runtime = 5"),
		Entry("negative", "time = -5"),
		Entry("glued suffix", "time = 5ms"),
		Entry("no digits", "time = "),
		Entry("overflow", "time = 99999999999999999999"),
	)
})

var _ = Describe("ParseRow", func() {
	DescribeTable("valid rows",
		func(line string, width int, want []int64) {
			row, ok := gridlog.ParseRow(line, width)
			Expect(ok).To(BeTrue())
			Expect(row).To(Equal(want))
		},
		Entry("simple", "1 2 3", 3, []int64{1, 2, 3}),
		Entry("surrounding space", "   4\t5  ", 2, []int64{4, 5}),
		Entry("negative and -0", "-3 -0", 2, []int64{-3, 0}),
		Entry("leading zeros", "007 10", 2, []int64{7, 10}),
		Entry("carriage return", "1 2\r", 2, []int64{1, 2}),
	)

	DescribeTable("noise",
		func(line string, width int) {
			_, ok := gridlog.ParseRow(line, width)
			Expect(ok).To(BeFalse())
		},
		Entry("blank", "   ", 2),
		Entry("too few", "1", 2),
		Entry("too many", "1 2 3", 2),
		Entry("float", "1.5 2", 2),
		Entry("plus sign", "+1 2", 2),
		Entry("double minus", "--1 2", 2),
		Entry("bare minus", "- 2", 2),
		Entry("letters", "1 2a", 2),
		Entry("overflow", "99999999999999999999 1", 2),
		Entry("zero width", "", 0),
	)
})

var _ = Describe("Classify", func() {
	It("tests marker before row", func() {
		Expect(gridlog.Classify("time = 1", 3)).To(Equal(gridlog.KindMarker))
		Expect(gridlog.Classify("1 2 3", 3)).To(Equal(gridlog.KindRow))
		Expect(gridlog.Classify("CUDA error 7", 3)).To(Equal(gridlog.KindNoise))
		Expect(gridlog.KindRow.String()).To(Equal("row"))
	})
})
