package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bnu-scit/registrar-api/internal/models"
	"github.com/bnu-scit/registrar-api/internal/service"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
	"github.com/bnu-scit/registrar-api/pkg/export"
	"github.com/bnu-scit/registrar-api/pkg/response"
)

// ExportHandler renders rosters and timetables as downloadable CSV or PDF.
type ExportHandler struct {
	enrollments *service.EnrollmentService
	schedules   *service.ScheduleService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(enrollments *service.EnrollmentService, schedules *service.ScheduleService) *ExportHandler {
	return &ExportHandler{
		enrollments: enrollments,
		schedules:   schedules,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
	}
}

func (h *ExportHandler) send(c *gin.Context, data export.Dataset, title, filename string) {
	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		body, err := h.pdf.Render(data, title)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", body)
	case "csv":
		body, err := h.csv.Render(data)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", body)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

// Roster godoc
// @Summary Export the enrolled-student roster for a course
// @Tags Exports
// @Produce octet-stream
// @Param code path string true "Course code"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /exports/courses/{code}/roster [get]
func (h *ExportHandler) Roster(c *gin.Context) {
	courseCode := c.Param("code")
	roster, err := h.enrollments.Roster(c.Request.Context(), courseCode)
	if err != nil {
		response.Error(c, err)
		return
	}

	data := export.Dataset{Headers: []string{"Student ID", "First Name", "Last Name", "Email", "Semester", "Degree"}}
	for _, entry := range roster {
		data.Rows = append(data.Rows, map[string]string{
			"Student ID": entry.StudentID,
			"First Name": entry.FirstName,
			"Last Name":  entry.LastName,
			"Email":      entry.Email,
			"Semester":   strconv.Itoa(entry.Semester),
			"Degree":     entry.Degree,
		})
	}
	h.send(c, data, "Roster "+courseCode, "roster-"+courseCode)
}

// FacultyTimetable godoc
// @Summary Export a faculty member's weekly timetable
// @Tags Exports
// @Produce octet-stream
// @Param id path int true "Faculty ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /exports/faculty/{id}/timetable [get]
func (h *ExportHandler) FacultyTimetable(c *gin.Context) {
	facultyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid faculty id"))
		return
	}
	timetable, err := h.schedules.FacultyTimetable(c.Request.Context(), facultyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.send(c, timetableDataset(timetable), "Faculty Timetable", fmt.Sprintf("faculty-%d-timetable", facultyID))
}

// StudentTimetable godoc
// @Summary Export a student's weekly timetable
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /exports/students/{id}/timetable [get]
func (h *ExportHandler) StudentTimetable(c *gin.Context) {
	studentID := c.Param("id")
	timetable, err := h.enrollments.StudentTimetable(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.send(c, timetableDataset(timetable), "Student Timetable", "student-"+studentID+"-timetable")
}

func timetableDataset(timetable []models.ScheduleDetail) export.Dataset {
	data := export.Dataset{Headers: []string{"Day", "Start", "End", "Course", "Faculty", "Room"}}
	for _, entry := range timetable {
		data.Rows = append(data.Rows, map[string]string{
			"Day":     entry.DayOfWeek,
			"Start":   entry.StartTime,
			"End":     entry.EndTime,
			"Course":  entry.CourseCode + " " + entry.CourseName,
			"Faculty": entry.FacultyName,
			"Room":    entry.RoomNumber + " " + entry.Building,
		})
	}
	return data
}
