package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/pkg/logger"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/prometheus"
)

// GetEffectiveFees returns a student's per-component fees after discounts.
func GetEffectiveFees(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordFeeComputation("effective")

	studentID := c.Param("id")
	classID := c.QueryParam("class_id")
	academicYear := c.QueryParam("academic_year")
	if classID == "" || academicYear == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "class_id and academic_year are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	summary, err := newEngine().EffectiveFees(c.Request().Context(), tenantID(c), studentID, classID, academicYear)
	if err != nil {
		return feeErrorResponse(c, err)
	}

	log.Info("Effective fees computed",
		zap.String("student_id", studentID),
		zap.Int("lines", len(summary.Lines)))
	return c.JSON(http.StatusOK, summary)
}

// GetOutstandingFees returns a student's fees joined with recorded payments.
func GetOutstandingFees(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordFeeComputation("outstanding")

	studentID := c.Param("id")
	classID := c.QueryParam("class_id")
	academicYear := c.QueryParam("academic_year")
	if classID == "" || academicYear == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "class_id and academic_year are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	summary, err := newEngine().OutstandingFees(c.Request().Context(), tenantID(c), studentID, classID, academicYear)
	if err != nil {
		return feeErrorResponse(c, err)
	}

	log.Info("Outstanding fees computed",
		zap.String("student_id", studentID),
		zap.String("total_outstanding", summary.TotalOutstanding.String()))
	return c.JSON(http.StatusOK, summary)
}

// GetClassFeeStructure returns a class's fee components sorted by amount
// descending, the order distribution consumes them in.
func GetClassFeeStructure(c echo.Context) error {
	prometheus.RecordFeeComputation("components")

	classID := c.Param("id")
	academicYear := c.QueryParam("academic_year")
	if academicYear == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "academic_year is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	components, err := newEngine().ClassComponents(c.Request().Context(), tenantID(c), classID, academicYear)
	if err != nil {
		return feeErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": components})
}

// GetClassIntegrity runs the fee structure integrity diagnostic for a class.
func GetClassIntegrity(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordFeeComputation("integrity")

	classID := c.Param("id")
	academicYear := c.QueryParam("academic_year")
	if academicYear == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "academic_year is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	report, err := newEngine().VerifyIntegrity(c.Request().Context(), tenantID(c), classID, academicYear)
	if err != nil {
		return feeErrorResponse(c, err)
	}

	if !report.Healthy {
		log.Warn("Fee structure integrity issues found",
			zap.String("class_id", classID),
			zap.Int("issues", len(report.Issues)))
	}
	return c.JSON(http.StatusOK, report)
}
