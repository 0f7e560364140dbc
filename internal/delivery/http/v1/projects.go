package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/services"
)

type projectResponse struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newProjectResponse(project *models.Project) projectResponse {
	return projectResponse{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		UserID:      project.UserID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

type projectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *handlerImpl) HandleListProjects(c *gin.Context) {
	user := currentUser(c)

	projects, err := h.projects.ListProjects(c, user.ID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list projects")
		abort(c, serviceError(err))
		return
	}

	response := make([]projectResponse, len(projects))
	for i, project := range projects {
		response[i] = newProjectResponse(project)
	}
	c.JSON(http.StatusOK, gin.H{"projects": response})
}

func (h *handlerImpl) HandleCreateProject(c *gin.Context) {
	user := currentUser(c)

	var req projectRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	project, err := h.projects.CreateProject(c, services.CreateProjectParams{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create project")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": newProjectResponse(project),
	})
}

func (h *handlerImpl) HandleGetProject(c *gin.Context) {
	user := currentUser(c)

	project, err := h.projects.GetProject(c, user.ID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get project")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": newProjectResponse(project)})
}

func (h *handlerImpl) HandleUpdateProject(c *gin.Context) {
	user := currentUser(c)

	var req projectRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	project, err := h.projects.UpdateProject(c, services.UpdateProjectParams{
		ID:          c.Param("id"),
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update project")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully",
		"project": newProjectResponse(project),
	})
}

func (h *handlerImpl) HandleDeleteProject(c *gin.Context) {
	user := currentUser(c)

	err := h.projects.DeleteProject(c, user.ID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete project")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
