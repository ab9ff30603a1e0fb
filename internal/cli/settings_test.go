package cli

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cwbudde/spectrafit/internal/failure"
)

var _ = Describe("settings parsing", func() {
	DescribeTable("oversampling",
		func(in any, want int, ok bool) {
			got, err := parseOversampling(in)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("flag", true, 5, true),
		Entry("off", false, 0, true),
		Entry("file factor", 8, 8, true),
		Entry("env bool", "true", 5, true),
		Entry("env factor", " 3 ", 3, true),
		Entry("env zero", "0", 0, true),
		Entry("factor one", 1, 0, false),
		Entry("garbage", "lots", 0, false),
	)

	DescribeTable("columns",
		func(in any, want [2]string, ok bool) {
			got, err := parseColumns(in)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("flag", "0,1", [2]string{"0", "1"}, true),
		Entry("names", "energy, counts", [2]string{"energy", "counts"}, true),
		Entry("file list", []any{int64(2), int64(3)}, [2]string{"2", "3"}, true),
		Entry("three", "0,1,2", [2]string{}, false),
		Entry("number", 4, [2]string{}, false),
	)

	It("requires a single decimal mark", func() {
		r, err := parseDecimal(",")
		Expect(err).NotTo(HaveOccurred())
		Expect(r).To(Equal(','))

		_, err = parseDecimal("")
		Expect(err).To(HaveOccurred())
	})

	It("classifies malformed settings as configuration errors", func() {
		_, err := parseDecimal("..")
		Expect(err).To(HaveOccurred())
		Expect(failure.KindOf(err)).To(Equal(failure.KindConfig))
		Expect(err.Error()).To(Equal(`settings: decimal mark ".." must be a single character`))

		_, err = parseColumns("0")
		Expect(failure.IsKind(err, failure.KindConfig)).To(BeTrue())
	})
})
