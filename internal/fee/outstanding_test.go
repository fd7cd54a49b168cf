package fee_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/fee"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/model"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/store"
)

func payment(id, component string, amount int64, year string) model.FeePayment {
	return model.FeePayment{
		ID:           id,
		StudentID:    testStudent,
		FeeComponent: component,
		AmountPaid:   decimal.NewFromInt(amount),
		PaymentDate:  time.Now(),
		AcademicYear: year,
		TenantID:     testTenant,
	}
}

func TestOutstandingFees_StatusPerLine(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	mem.AddPayment(payment("p1", "library fee", 3000, testYear))
	mem.AddPayment(payment("p2", "tuition fee", 2000, testYear))

	summary, err := engine.OutstandingFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 2)

	library, tuition := summary.Lines[0], summary.Lines[1]
	assert.Equal(t, fee.StatusPaid, library.Status)
	assertAmount(t, 0, library.Outstanding)

	assert.Equal(t, fee.StatusPartial, tuition.Status)
	assertAmount(t, 5000, tuition.Outstanding)

	assertAmount(t, 10000, summary.TotalDue)
	assertAmount(t, 5000, summary.TotalPaid)
	assertAmount(t, 5000, summary.TotalOutstanding)
}

func TestOutstandingFees_NoPaymentsMeansUnpaid(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)

	summary, err := engine.OutstandingFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)

	for _, line := range summary.Lines {
		assert.Equal(t, fee.StatusUnpaid, line.Status)
	}
	assertAmount(t, 10000, summary.TotalOutstanding)
}

func TestOutstandingFees_PaymentsMatchNormalizedComponentNames(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	// Differs in case and spacing from the stored "tuition fee" component.
	mem.AddPayment(payment("p1", "  Tuition  Fee ", 7000, testYear))

	summary, err := engine.OutstandingFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)

	tuition := summary.Lines[1]
	require.Equal(t, "tuition fee", tuition.Component)
	assert.Equal(t, fee.StatusPaid, tuition.Status)
	assert.Empty(t, summary.OrphanedPayments)
}

func TestOutstandingFees_UnmatchedPaymentReportedAsOrphan(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	mem.AddPayment(payment("p1", "hostel fee", 1500, testYear))

	summary, err := engine.OutstandingFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)

	require.Len(t, summary.OrphanedPayments, 1)
	assert.Equal(t, "p1", summary.OrphanedPayments[0].PaymentID)
	assert.Equal(t, "hostel fee", summary.OrphanedPayments[0].FeeComponent)
	// Orphans never reduce the outstanding total.
	assertAmount(t, 10000, summary.TotalOutstanding)
}

func TestOutstandingFees_PaymentWithoutYearMatchesAnyYear(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	mem.AddPayment(payment("p1", "library fee", 3000, ""))
	mem.AddPayment(payment("p2", "tuition fee", 1000, "2023-24"))

	summary, err := engine.OutstandingFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)

	library, tuition := summary.Lines[0], summary.Lines[1]
	assert.Equal(t, fee.StatusPaid, library.Status, "year-less payment applies")
	assert.Equal(t, fee.StatusUnpaid, tuition.Status, "other-year payment does not")
}

func TestOutstandingFees_DiscountsReduceWhatIsDue(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	insertDiscount(t, mem, discount("d1", "tuition fee", model.DiscountFixed, 4000, time.Now()))
	mem.AddPayment(payment("p1", "tuition fee", 3000, testYear))

	summary, err := engine.OutstandingFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)

	tuition := summary.Lines[1]
	assertAmount(t, 3000, tuition.FinalAmount)
	assert.Equal(t, fee.StatusPaid, tuition.Status)
	assertAmount(t, 0, tuition.Outstanding)
}

func TestOutstandingFees_OverpaymentClampsAtZero(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	mem.AddPayment(payment("p1", "library fee", 5000, testYear))

	summary, err := engine.OutstandingFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)

	library := summary.Lines[0]
	assertAmount(t, 0, library.Outstanding)
	assert.False(t, library.Outstanding.IsNegative())
}

func TestOutstandingFees_EachPaymentCountedOnce(t *testing.T) {
	engine, mem := newTestEngine(t)
	// Two class rows for the same component collapse into one line; the
	// payment against it must not be double counted.
	first := classFee("tuition fee", 4000)
	first.ID = "tuition-row-1"
	second := classFee("tuition fee", 3000)
	second.ID = "tuition-row-2"
	mem.AddClassFee(first)
	mem.AddClassFee(second)
	mem.AddPayment(payment("p1", "tuition fee", 5000, testYear))

	summary, err := engine.OutstandingFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)

	assertAmount(t, 5000, summary.TotalPaid)
	assertAmount(t, 2000, summary.TotalOutstanding)
}

func TestOutstandingFees_RequiresTenantScope(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)

	_, err := engine.OutstandingFees(context.Background(), "", testStudent, testClass, testYear)
	assert.ErrorIs(t, err, store.ErrTenantRequired)
}
