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

const (
	testTenant  = "11111111-1111-1111-1111-111111111111"
	testStudent = "22222222-2222-2222-2222-222222222222"
	testClass   = "33333333-3333-3333-3333-333333333333"
	testYear    = "2024-25"
)

func newTestEngine(t *testing.T) (*fee.Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return fee.NewEngine(mem), mem
}

func classFee(component string, amount int64) model.ClassFee {
	return model.ClassFee{
		ID:           component + "-row",
		ClassID:      testClass,
		AcademicYear: testYear,
		FeeComponent: component,
		Amount:       decimal.NewFromInt(amount),
		BaseAmount:   decimal.NewFromInt(amount),
		TenantID:     testTenant,
	}
}

// seedStandardClass installs the usual two-component structure:
// tuition 7000, library 3000.
func seedStandardClass(mem *store.Memory) {
	mem.AddClassFee(classFee("tuition fee", 7000))
	mem.AddClassFee(classFee("library fee", 3000))
}

func discount(id, component string, dt model.DiscountType, value int64, createdAt time.Time) model.StudentDiscount {
	return model.StudentDiscount{
		ID:            id,
		StudentID:     testStudent,
		ClassID:       testClass,
		AcademicYear:  testYear,
		DiscountType:  dt,
		DiscountValue: decimal.NewFromInt(value),
		FeeComponent:  component,
		IsActive:      true,
		TenantID:      testTenant,
		CreatedAt:     createdAt,
	}
}

func insertDiscount(t *testing.T, mem *store.Memory, d model.StudentDiscount) {
	t.Helper()
	require.NoError(t, mem.InsertDiscount(context.Background(), &d))
}

func assertAmount(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(want)),
		"expected %d, got %s", want, got.String())
}

func TestClassComponents_SortedByAmountDescending(t *testing.T) {
	engine, mem := newTestEngine(t)
	mem.AddClassFee(classFee("library fee", 3000))
	mem.AddClassFee(classFee("tuition fee", 7000))
	mem.AddClassFee(classFee("sports fee", 500))

	components, err := engine.ClassComponents(context.Background(), testTenant, testClass, testYear)
	require.NoError(t, err)
	require.Len(t, components, 3)

	assert.Equal(t, "tuition fee", components[0].FeeComponent)
	assert.Equal(t, "library fee", components[1].FeeComponent)
	assert.Equal(t, "sports fee", components[2].FeeComponent)
}

func TestClassComponents_EqualAmountsBreakTiesByName(t *testing.T) {
	engine, mem := newTestEngine(t)
	mem.AddClassFee(classFee("transport fee", 2000))
	mem.AddClassFee(classFee("library fee", 2000))

	components, err := engine.ClassComponents(context.Background(), testTenant, testClass, testYear)
	require.NoError(t, err)
	require.Len(t, components, 2)

	assert.Equal(t, "library fee", components[0].FeeComponent)
	assert.Equal(t, "transport fee", components[1].FeeComponent)
}

func TestClassComponents_DuplicateRowsForComponentAreSummed(t *testing.T) {
	engine, mem := newTestEngine(t)
	first := classFee("tuition fee", 4000)
	first.ID = "tuition-row-1"
	second := classFee("tuition fee", 3000)
	second.ID = "tuition-row-2"
	mem.AddClassFee(first)
	mem.AddClassFee(second)

	components, err := engine.ClassComponents(context.Background(), testTenant, testClass, testYear)
	require.NoError(t, err)
	require.Len(t, components, 1)
	assertAmount(t, 7000, components[0].Amount)
}

func TestClassComponents_EmptyStructureFails(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.ClassComponents(context.Background(), testTenant, testClass, testYear)
	assert.ErrorIs(t, err, fee.ErrNoFeeStructure)
}

func TestClassComponents_IgnoresStudentScopedRows(t *testing.T) {
	engine, mem := newTestEngine(t)
	mem.AddClassFee(classFee("tuition fee", 7000))
	override := classFee("tuition fee", 5000)
	override.ID = "override-row"
	sid := testStudent
	override.StudentID = &sid
	mem.AddClassFee(override)

	components, err := engine.ClassComponents(context.Background(), testTenant, testClass, testYear)
	require.NoError(t, err)
	require.Len(t, components, 1)
	assertAmount(t, 7000, components[0].Amount)
}

func TestEffectiveFees_NoDiscounts(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)

	summary, err := engine.EffectiveFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 2)

	assertAmount(t, 10000, summary.Totals.TotalBase)
	assertAmount(t, 0, summary.Totals.TotalDiscount)
	assertAmount(t, 10000, summary.Totals.TotalFinal)
}

func TestEffectiveFees_PercentageDiscountOnComponent(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	insertDiscount(t, mem, discount("d1", "tuition fee", model.DiscountPercentage, 50, time.Now()))

	summary, err := engine.EffectiveFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 2)

	// Lines are sorted by component name: library before tuition.
	library, tuition := summary.Lines[0], summary.Lines[1]
	assert.Equal(t, "library fee", library.Component)
	assertAmount(t, 3000, library.FinalAmount)

	assert.Equal(t, "tuition fee", tuition.Component)
	assertAmount(t, 3500, tuition.DiscountApplied)
	assertAmount(t, 3500, tuition.FinalAmount)
	assertAmount(t, 6500, summary.Totals.TotalFinal)
}

func TestEffectiveFees_FixedDiscountNeverExceedsBase(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	insertDiscount(t, mem, discount("d1", "library fee", model.DiscountFixed, 5000, time.Now()))

	summary, err := engine.EffectiveFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)

	library := summary.Lines[0]
	require.Equal(t, "library fee", library.Component)
	assertAmount(t, 3000, library.DiscountApplied)
	assertAmount(t, 0, library.FinalAmount)
	assert.False(t, library.FinalAmount.IsNegative())
}

func TestEffectiveFees_ComponentSpecificBeatsGlobal(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	base := time.Now()
	// Global discount inserted first, specific one later: the specific one
	// must still win on its component.
	insertDiscount(t, mem, discount("d-global", "", model.DiscountFixed, 1000, base))
	insertDiscount(t, mem, discount("d-tuition", "tuition fee", model.DiscountFixed, 2000, base.Add(time.Minute)))

	summary, err := engine.EffectiveFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)

	library, tuition := summary.Lines[0], summary.Lines[1]
	assertAmount(t, 1000, library.DiscountApplied)
	assertAmount(t, 2000, tuition.DiscountApplied)
}

func TestEffectiveFees_EarliestDiscountWinsOnSameComponent(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	base := time.Now()
	insertDiscount(t, mem, discount("d-old", "tuition fee", model.DiscountFixed, 1000, base))
	insertDiscount(t, mem, discount("d-new", "tuition fee", model.DiscountFixed, 4000, base.Add(time.Hour)))

	summary, err := engine.EffectiveFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)

	tuition := summary.Lines[1]
	require.Equal(t, "tuition fee", tuition.Component)
	assertAmount(t, 1000, tuition.DiscountApplied)
}

func TestEffectiveFees_InactiveDiscountIgnored(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	d := discount("d1", "tuition fee", model.DiscountFixed, 2000, time.Now())
	d.IsActive = false
	insertDiscount(t, mem, d)

	summary, err := engine.EffectiveFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)
	assertAmount(t, 0, summary.Totals.TotalDiscount)
}

func TestEffectiveFees_DiscountYearFormatsMatch(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	// Stored in long form, requested in short form.
	d := discount("d1", "tuition fee", model.DiscountFixed, 2000, time.Now())
	d.AcademicYear = "2024-2025"
	insertDiscount(t, mem, d)

	summary, err := engine.EffectiveFees(context.Background(), testTenant, testStudent, testClass, "2024-25")
	require.NoError(t, err)
	assertAmount(t, 2000, summary.Totals.TotalDiscount)
}

func TestEffectiveFees_EmptyStructureIsEmptyNotError(t *testing.T) {
	engine, _ := newTestEngine(t)

	summary, err := engine.EffectiveFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)
	assert.Empty(t, summary.Lines)
	assertAmount(t, 0, summary.Totals.TotalFinal)
}

func TestEffectiveFees_RepeatedReadsReturnIdenticalResults(t *testing.T) {
	engine, mem := newTestEngine(t)
	seedStandardClass(mem)
	insertDiscount(t, mem, discount("d1", "", model.DiscountPercentage, 25, time.Now()))

	first, err := engine.EffectiveFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)
	second, err := engine.EffectiveFees(context.Background(), testTenant, testStudent, testClass, testYear)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, mem.AllDiscounts(), 1, "read must not write")
}
