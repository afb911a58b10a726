package gridlog_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gridlog/internal/gridlog"
)

var _ = Describe("Series", func() {
	var s *gridlog.Series

	BeforeEach(func() {
		var err error
		s, err = gridlog.NewSeries([]int64{10, 20, 30, 40, 50}, 1, 2, []int64{
			1, 1,
			2, 2,
			3, 3,
			4, 4,
			5, 5,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects data of the wrong length", func() {
		_, err := gridlog.NewSeries([]int64{1, 2}, 2, 2, make([]int64, 7))
		Expect(err).To(MatchError(gridlog.ErrShapeMismatch))

		_, err = gridlog.NewSeries(nil, 0, 2, nil)
		Expect(err).To(MatchError(gridlog.ErrShapeMismatch))
	})

	It("rejects shapes whose size overflows", func() {
		_, err := gridlog.NewSeries([]int64{1}, 1<<62, 4, nil)
		Expect(err).To(MatchError(gridlog.ErrShapeMismatch))

		_, err = gridlog.NewSeries(make([]int64, 4), 1<<31, 1<<31, nil)
		Expect(err).To(MatchError(gridlog.ErrShapeMismatch))
	})

	It("subsamples from the first timestep", func() {
		sub := s.Subsample(2)
		Expect(sub.Timesteps).To(Equal([]int64{10, 30, 50}))
		Expect(sub.Data).To(Equal([]int64{1, 1, 3, 3, 5, 5}))
		Expect(sub.Validate()).To(Succeed())

		Expect(s.Subsample(1)).To(BeIdenticalTo(s))
		Expect(s.Subsample(10).Timesteps).To(Equal([]int64{10}))
	})

	It("bounds-checks GridAt", func() {
		g, err := s.GridAt(4)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.At(0, 1)).To(Equal(int64(5)))
		Expect(g.Floats()).To(Equal([]float64{5, 5}))

		_, err = s.GridAt(5)
		Expect(err).To(MatchError(gridlog.ErrIndexOutOfRange))
		_, err = s.GridAt(-1)
		Expect(err).To(MatchError(gridlog.ErrIndexOutOfRange))
	})

	It("compares by value", func() {
		other, err := gridlog.NewSeries(append([]int64(nil), s.Timesteps...), 1, 2, append([]int64(nil), s.Data...))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Equal(other)).To(BeTrue())

		other.Data[3] = 99
		Expect(s.Equal(other)).To(BeFalse())
		Expect(s.Equal(nil)).To(BeFalse())
	})
})
