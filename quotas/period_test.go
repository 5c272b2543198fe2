package quotas_test

import (
	"time"

	. "github.com/miguelfer1410/cdp-sub001/quotas"

	"github.com/miguelfer1410/cdp-sub001/store"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolvePeriods", func() {

	It("bills month by month for the monthly preference", func() {
		current, next := ResolvePeriods(store.PREFERENCE_MONTHLY, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))
		Expect(current).To(Equal(Period{Year: 2026, Month: 3}))
		Expect(next).To(Equal(Period{Year: 2026, Month: 4}))
	})

	It("rolls December over to January of the next year", func() {
		current, next := ResolvePeriods(store.PREFERENCE_MONTHLY, time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC))
		Expect(current).To(Equal(Period{Year: 2026, Month: 12}))
		Expect(next).To(Equal(Period{Year: 2027, Month: 1}))
	})

	It("bills whole years for the annual preference", func() {
		current, next := ResolvePeriods(store.PREFERENCE_ANNUAL, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC))
		Expect(current).To(Equal(Period{Year: 2026}))
		Expect(next).To(Equal(Period{Year: 2027}))
		Expect(current.IsAnnual()).To(BeTrue())
	})

	It("treats an unknown preference as monthly", func() {
		current, _ := ResolvePeriods("Weekly", time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))
		Expect(current.Month).To(Equal(3))
	})
})
