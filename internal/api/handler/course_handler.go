package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skillsphere/web/internal/api/view"
	"github.com/skillsphere/web/internal/core/domain"
	"github.com/skillsphere/web/internal/core/ports"
	"github.com/skillsphere/web/internal/infrastructure/backend"
	"github.com/skillsphere/web/internal/pkg/metrics"
)

const (
	updateSuccessMessage = "Course updated successfully"
	updateFailureMessage = "Failed to update course. Please try again."
	invalidFormMessage   = "Please check the course details and try again."
)

type CourseHandler struct {
	courses ports.CourseService
	flashes ports.FlashStore
	pages   *PageHandler
	logger  zerolog.Logger
}

func NewCourseHandler(courses ports.CourseService, flashes ports.FlashStore, pages *PageHandler, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, flashes: flashes, pages: pages, logger: logger}
}

// MyEnrolled handles GET /my-enrolled.
func (h *CourseHandler) MyEnrolled(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var data view.EnrolledView
	items, err := h.courses.MyEnrollments(c.Request().Context(), user)
	if err != nil {
		h.logger.Warn().Err(err).Str("user_id", user.ID).Msg("load enrollments failed")
		data.Failed = true
	} else {
		data.Cards = toEnrollmentCards(items)
	}
	return h.pages.Render(c, http.StatusOK, "my_enrolled", "My Enrolled Courses", data)
}

// MyCourses handles GET /dashboard/my-courses.
func (h *CourseHandler) MyCourses(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var data view.MyCoursesView
	items, err := h.courses.InstructorCourses(c.Request().Context(), user)
	if err != nil {
		h.logger.Warn().Err(err).Str("user_id", user.ID).Msg("load instructor courses failed")
		data.Failed = true
	} else {
		data.Courses = toCourseRows(items)
	}
	return h.pages.Render(c, http.StatusOK, "my_courses", "My Courses", data)
}

// EditCourse handles GET /update-course/:id.
func (h *CourseHandler) EditCourse(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	course, err := h.courses.GetCourse(c.Request().Context(), user, id)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return err
		}
		h.logger.Warn().Err(err).Str("course_id", id).Msg("load course failed")
		return h.pages.Render(c, http.StatusBadGateway, "update_course", "Update Course",
			view.CourseFormView{ID: id, LoadFailed: true})
	}

	return h.pages.Render(c, http.StatusOK, "update_course", "Update Course", formView(id, courseToForm(course)))
}

// UpdateCourse handles POST /update-course/:id. Invalid input and backend
// failures re-render the form with an error toast; success redirects to the
// instructor's course list.
func (h *CourseHandler) UpdateCourse(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	sid, err := ctxSessionID(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	var req courseFormRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form submission")
	}
	form := formView(id, requestToForm(req))

	if err := c.Validate(&req); err != nil {
		metrics.CourseUpdatesTotal.WithLabelValues("invalid").Inc()
		return h.rejectForm(c, sid, http.StatusUnprocessableEntity, validationMessage(err), form)
	}

	if err := h.courses.UpdateCourse(c.Request().Context(), user, id, toUpdateInput(req)); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return h.rejectForm(c, sid, http.StatusUnprocessableEntity, invalidFormMessage, form)
		}
		h.logger.Warn().Err(err).Str("course_id", id).Msg("update course failed")
		msg := backend.Message(err)
		if msg == "" {
			msg = updateFailureMessage
		}
		return h.rejectForm(c, sid, http.StatusBadGateway, msg, form)
	}

	h.pushFlash(c, sid, domain.Flash{Kind: domain.FlashSuccess, Message: updateSuccessMessage})
	return c.Redirect(http.StatusSeeOther, "/dashboard/my-courses")
}

func (h *CourseHandler) rejectForm(c echo.Context, sid string, code int, msg string, form view.CourseFormView) error {
	h.pushFlash(c, sid, domain.Flash{Kind: domain.FlashError, Message: msg})
	return h.pages.Render(c, code, "update_course", "Update Course", form)
}

func (h *CourseHandler) pushFlash(c echo.Context, sid string, f domain.Flash) {
	if h.flashes == nil {
		return
	}
	if err := h.flashes.Push(c.Request().Context(), sid, f); err != nil {
		h.logger.Warn().Err(err).Msg("flash write failed")
	}
}
