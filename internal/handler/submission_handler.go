package handler

import (
	"net/http"

	"github.com/campushack/portal/internal/service"
	"github.com/campushack/portal/pkg/response"
	"github.com/campushack/portal/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubmissionHandler struct {
	submissionService service.SubmissionService
}

func NewSubmissionHandler(submissionService service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

func (h *SubmissionHandler) Register(c *gin.Context) {
	var input service.RegisterSubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	leaderID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	problemID, err := uuid.Parse(input.ProblemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid problem id"})
		return
	}

	submission, err := h.submissionService.RegisterForProblem(c.Request.Context(), leaderID, problemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Problem registered successfully", "submission": submission})
}

func (h *SubmissionHandler) Submit(c *gin.Context) {
	var input service.SubmitSolutionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	leaderID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	submission, err := h.submissionService.SubmitSolution(c.Request.Context(), leaderID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Submission updated", "submission": submission})
}

func (h *SubmissionHandler) ListTeams(c *gin.Context) {
	problemID, err := uuid.Parse(c.Param("problem_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid problem id"})
		return
	}

	teams, err := h.submissionService.ListTeamsForProblem(c.Request.Context(), problemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": teams})
}
