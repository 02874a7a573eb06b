package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"lms-backend/internal/usecase/course"
	"lms-backend/pkg/utils"
)

type CourseHandler struct {
	service *course.Service
}

func NewCourseHandler(service *course.Service) *CourseHandler {
	return &CourseHandler{service: service}
}

func (h *CourseHandler) RegisterRoutes(router *gin.RouterGroup, authenticate, adminOnly gin.HandlerFunc) {
	courseGroup := router.Group("/courses")
	{
		courseGroup.GET("", h.List)
		courseGroup.POST("", authenticate, adminOnly, h.Create)
		courseGroup.GET("/:id", authenticate, h.GetLectures)
		courseGroup.POST("/:id", authenticate, adminOnly, h.AddLecture)
		courseGroup.DELETE("/:id/lecture/:lectureId", authenticate, adminOnly, h.RemoveLecture)
	}
}

func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.service.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "All courses", gin.H{"courses": courses})
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req course.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Course created successfully", gin.H{"course": created})
}

func (h *CourseHandler) GetLectures(c *gin.Context) {
	lectures, err := h.service.GetLectures(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Course lectures fetched successfully", gin.H{"lectures": lectures})
}

func (h *CourseHandler) AddLecture(c *gin.Context) {
	var req course.AddLectureRequest
	if !bind(c, &req) {
		return
	}

	file, ok := formFile(c, "lecture")
	if !ok {
		return
	}
	var video io.ReadSeeker
	if file != nil {
		defer file.Close()
		video = file
	}

	updated, err := h.service.AddLecture(c.Request.Context(), c.Param("id"), &req, video)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Course lecture added successfully", gin.H{"course": updated})
}

func (h *CourseHandler) RemoveLecture(c *gin.Context) {
	if err := h.service.RemoveLecture(c.Request.Context(), c.Param("id"), c.Param("lectureId")); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Course lecture removed successfully", nil)
}
