package predictor_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/predictor"
)

var _ = Describe("Counter", func() {
	It("should reach strongly taken from strongly not taken in 3 steps", func() {
		c := predictor.SN
		c = c.Update(predictor.Taken)
		Expect(c).To(Equal(predictor.WN))
		c = c.Update(predictor.Taken)
		Expect(c).To(Equal(predictor.WT))
		c = c.Update(predictor.Taken)
		Expect(c).To(Equal(predictor.ST))

		// Saturated: further taken evidence changes nothing
		for i := 0; i < 10; i++ {
			c = c.Update(predictor.Taken)
		}
		Expect(c).To(Equal(predictor.ST))
	})

	It("should saturate at strongly not taken", func() {
		c := predictor.ST
		for i := 0; i < 10; i++ {
			c = c.Update(predictor.NotTaken)
		}
		Expect(c).To(Equal(predictor.SN))
	})

	It("should stay within [SN, ST] for any update sequence", func() {
		rng := rand.New(rand.NewSource(42))
		c := predictor.WN
		for i := 0; i < 10000; i++ {
			c = c.Update(predictor.Outcome(rng.Intn(2)))
			Expect(c).To(BeNumerically(">=", predictor.SN))
			Expect(c).To(BeNumerically("<=", predictor.ST))
		}
	})

	It("should clamp out-of-range values to ST in both directions", func() {
		for _, c := range []predictor.Counter{4, 7, 255} {
			Expect(c.Advance()).To(Equal(predictor.ST), c.String())
			Expect(c.Retreat()).To(Equal(predictor.ST), c.String())
			Expect(c.Update(predictor.NotTaken).Retreat()).To(Equal(predictor.WT))
		}
	})

	It("should ignore invalid outcomes", func() {
		Expect(predictor.WT.Update(predictor.Outcome(7))).To(Equal(predictor.WT))
	})

	It("should predict from the top bit only", func() {
		Expect(predictor.SN.Prediction()).To(Equal(predictor.NotTaken))
		Expect(predictor.WN.Prediction()).To(Equal(predictor.NotTaken))
		Expect(predictor.WT.Prediction()).To(Equal(predictor.Taken))
		Expect(predictor.ST.Prediction()).To(Equal(predictor.Taken))
	})

	It("should require 2 mispredictions to change direction", func() {
		c := predictor.ST
		c = c.Retreat()
		Expect(c.Prediction()).To(Equal(predictor.Taken))
		c = c.Retreat()
		Expect(c.Prediction()).To(Equal(predictor.NotTaken))
	})

	It("should name its states", func() {
		Expect(predictor.SN.String()).To(Equal("SN"))
		Expect(predictor.WN.String()).To(Equal("WN"))
		Expect(predictor.WT.String()).To(Equal("WT"))
		Expect(predictor.ST.String()).To(Equal("ST"))
	})
})

var _ = Describe("Outcome", func() {
	It("should accept only taken and not taken", func() {
		Expect(predictor.Taken.Valid()).To(BeTrue())
		Expect(predictor.NotTaken.Valid()).To(BeTrue())
		Expect(predictor.Outcome(2).Valid()).To(BeFalse())
	})

	It("should print as T or N", func() {
		Expect(predictor.Taken.String()).To(Equal("T"))
		Expect(predictor.NotTaken.String()).To(Equal("N"))
		Expect(predictor.Outcome(9).String()).To(Equal("?"))
	})
})
