package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/fee"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/model"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/store"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/pkg/database"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/pkg/logger"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/prometheus"
)

var validate = validator.New()

func newEngine() *fee.Engine {
	return fee.NewEngine(store.NewGorm(database.GetDB()))
}

func tenantID(c echo.Context) string {
	id, _ := c.Get("tenant_id").(string)
	return id
}

// ConcessionRequest defines the structure for concession creation requests
type ConcessionRequest struct {
	StudentID     string          `json:"student_id" validate:"required"`
	ClassID       string          `json:"class_id" validate:"required"`
	AcademicYear  string          `json:"academic_year" validate:"required"`
	DiscountType  string          `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	FeeComponent  string          `json:"fee_component"` // empty = distribute across all
	Description   string          `json:"description"`
}

// CreateConcession handles concession creation, including automatic
// distribution across fee components when no component is named.
func CreateConcession(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordConcessionOperation("create")

	var req ConcessionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse concession request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := validate.Struct(&req); err != nil {
		log.Error("Invalid concession data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	result, err := newEngine().CreateConcession(c.Request().Context(), fee.ConcessionInput{
		TenantID:      tenantID(c),
		StudentID:     req.StudentID,
		ClassID:       req.ClassID,
		AcademicYear:  req.AcademicYear,
		DiscountType:  model.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		FeeComponent:  req.FeeComponent,
		Description:   req.Description,
	})
	if err != nil {
		return feeErrorResponse(c, err)
	}

	if result.Distribution != nil {
		prometheus.RecordConcessionOperation("distribute")
		prometheus.RecordDistributionSpread(len(result.Distribution.Breakdown))
	}

	log.Info("Concession created",
		zap.String("student_id", req.StudentID),
		zap.Int("records", len(result.CreatedDiscounts)))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Concession created successfully",
		"data":    result,
	})
}

// ConcessionPatchRequest defines the structure for concession updates
type ConcessionPatchRequest struct {
	DiscountType  *string          `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed_amount"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	Description   *string          `json:"description,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

// UpdateConcession handles partial updates of an existing concession
func UpdateConcession(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordConcessionOperation("update")

	var req ConcessionPatchRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse concession patch", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	patch := fee.ConcessionPatch{
		DiscountValue: req.DiscountValue,
		Description:   req.Description,
		IsActive:      req.IsActive,
	}
	if req.DiscountType != nil {
		t := model.DiscountType(*req.DiscountType)
		patch.DiscountType = &t
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := newEngine().UpdateConcession(c.Request().Context(), tenantID(c), c.Param("id"), patch); err != nil {
		return feeErrorResponse(c, err)
	}

	log.Info("Concession updated", zap.String("discount_id", c.Param("id")))
	return c.JSON(http.StatusOK, echo.Map{"message": "Concession updated successfully"})
}

// DeleteConcession handles concession removal. Soft delete by default; pass
// ?mode=hard for permanent cleanup.
func DeleteConcession(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordConcessionOperation("delete")

	mode := fee.SoftDelete
	if c.QueryParam("mode") == "hard" {
		mode = fee.HardDelete
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := newEngine().DeleteConcession(c.Request().Context(), tenantID(c), c.Param("id"), mode); err != nil {
		return feeErrorResponse(c, err)
	}

	log.Info("Concession deleted",
		zap.String("discount_id", c.Param("id")),
		zap.Bool("hard", mode == fee.HardDelete))
	return c.JSON(http.StatusOK, echo.Map{"message": "Concession deleted successfully"})
}

// feeErrorResponse maps tagged engine errors onto HTTP statuses.
func feeErrorResponse(c echo.Context, err error) error {
	log := logger.FromEcho(c)

	var partial *fee.PartialWriteError
	switch {
	case errors.Is(err, fee.ErrNotFound):
		prometheus.RecordFeeError("not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "concession not found"})
	case errors.Is(err, fee.ErrNoFeeStructure):
		prometheus.RecordFeeError("no_fee_structure")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no fee structure defined for this class and academic year"})
	case errors.Is(err, fee.ErrInvalidPercentage):
		prometheus.RecordFeeError("invalid_percentage")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "percentage discount must be between 0 and 100"})
	case errors.Is(err, fee.ErrInvalidAmount):
		prometheus.RecordFeeError("invalid_amount")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "discount amount must be greater than zero"})
	case errors.Is(err, fee.ErrInvalidDiscountType), errors.Is(err, fee.ErrMissingField):
		prometheus.RecordFeeError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.As(err, &partial):
		prometheus.RecordFeeError("partial_write")
		prometheus.DistributionRollbackCounter.Inc()
		log.Error("Distribution batch rolled back", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "concession could not be saved; no partial records were left behind"})
	default:
		prometheus.RecordFeeError("store_error")
		log.Error("Fee operation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fee operation failed"})
	}
}
