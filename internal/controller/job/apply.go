package job

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobboard-backend/internal/model"
	"jobboard-backend/internal/storage"
	"jobboard-backend/internal/utilities"
)

type applicationResponse struct {
	Msg         string            `json:"msg"`
	Application model.Application `json:"application"`
}

// Apply stores the applicant's resume and records the application. The
// stored resume is removed again when the record cannot be written.
// @Summary Apply to a job
// @Description The resume must be a PDF. Skill fields are comma separated.
// @Tags Jobs
// @Accept mpfd
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param id formData string true "Job id"
// @Param userTechSkills formData string true "Technical skills"
// @Param userSoftSkills formData string false "Soft skills"
// @Param userResume formData file true "Resume (PDF)"
// @Success 201 {object} applicationResponse
// @Failure 400 {object} utilities.ErrorResponse "Invalid request"
// @Failure 404 {object} utilities.ErrorResponse "Job not found"
// @Failure 409 {object} utilities.ErrorResponse "You have already applied to this job"
// @Failure 413 {object} utilities.ErrorResponse "Request body too large"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /jobs/apply [post]
func (jc *JobController) Apply(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}

	var form ApplyForm
	if err := c.ShouldBind(&form); err != nil {
		utilities.Fail(c, utilities.NewValidationError([]string{err.Error()}))
		return
	}

	ctx := c.Request.Context()
	db := jc.DB.WithContext(ctx)

	var job model.Job
	if err := db.Where("id = ?", form.ID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utilities.Fail(c, utilities.NewNotFound("Job not found"))
			return
		}
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	var existing int64
	if err := db.Model(&model.Application{}).
		Where("job_id = ? AND user_id = ?", job.ID, user.ID).
		Count(&existing).Error; err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}
	if existing > 0 {
		utilities.Fail(c, utilities.NewConflict("You have already applied to this job"))
		return
	}

	fh, err := c.FormFile(ResumeField)
	if err != nil {
		utilities.Fail(c, utilities.AsAppError(err))
		return
	}
	file, err := fh.Open()
	if err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}
	defer file.Close()

	objectName := storage.ObjectName(storage.ResumePrefix, ".pdf")
	location, err := jc.Storage.UploadFile(ctx, objectName, file)
	if err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	application := model.Application{
		JobID:          job.ID,
		UserID:         user.ID,
		UserTechSkills: utilities.SplitList(form.UserTechSkills...),
		UserSoftSkills: utilities.SplitList(form.UserSoftSkills...),
		UserResume:     location,
	}
	if err := db.Create(&application).Error; err != nil {
		if delErr := jc.Storage.DeleteFile(ctx, objectName); delErr != nil {
			slog.ErrorContext(ctx, "failed to remove orphaned resume", "object", objectName, "error", delErr)
		}
		switch {
		case utilities.IsUniqueViolation(err):
			utilities.Fail(c, utilities.NewConflict("You have already applied to this job"))
		case utilities.IsForeignKeyViolation(err):
			utilities.Fail(c, utilities.NewNotFound("Job not found"))
		default:
			utilities.Fail(c, utilities.NewInternal(err))
		}
		return
	}

	c.JSON(http.StatusCreated, applicationResponse{Msg: "Application sent successfully", Application: application})
}
