package job

import "jobboard-backend/internal/validation"

// AddJobRequest is the body of POST /jobs.
type AddJobRequest struct {
	JobTitle        string   `json:"jobTitle" binding:"required,max=100"`
	JobLocation     string   `json:"jobLocation" binding:"required,oneof=onsite remotely hybrid"`
	WorkingTime     string   `json:"workingTime" binding:"required,oneof=fullTime partTime"`
	SeniorityLevel  string   `json:"seniorityLevel" binding:"required,oneof=junior Mid-Level senior Team-Lead CTO"`
	JobDescription  string   `json:"jobDescription" binding:"required"`
	TechnicalSkills []string `json:"technicalSkills" binding:"required,min=1,dive,required"`
	SoftSkills      []string `json:"softSkills" binding:"required,min=1,dive,required"`
	CompanyID       string   `json:"companyId" binding:"omitempty,objectid"`
}

// UpdateJobRequest edits a job. Empty fields are left unchanged.
type UpdateJobRequest struct {
	ID              string   `json:"id" binding:"required,objectid"`
	JobTitle        string   `json:"jobTitle" binding:"omitempty,max=100"`
	JobLocation     string   `json:"jobLocation" binding:"omitempty,oneof=onsite remotely hybrid"`
	WorkingTime     string   `json:"workingTime" binding:"omitempty,oneof=fullTime partTime"`
	SeniorityLevel  string   `json:"seniorityLevel" binding:"omitempty,oneof=junior Mid-Level senior Team-Lead CTO"`
	JobDescription  string   `json:"jobDescription"`
	TechnicalSkills []string `json:"technicalSkills" binding:"omitempty,min=1,dive,required"`
	SoftSkills      []string `json:"softSkills" binding:"omitempty,min=1,dive,required"`
	CompanyID       string   `json:"companyId" binding:"omitempty,objectid"`
}

// DeleteJobRequest names the job to delete.
type DeleteJobRequest struct {
	ID string `json:"id" binding:"required,objectid"`
}

// CompanyJobsQuery is the query of GET /jobs/getJobs.
type CompanyJobsQuery struct {
	CompanyName string `form:"companyName" binding:"required"`
}

// FilterQuery holds the optional criteria of GET /jobs/filteredJobs.
// technicalSkills may repeat or be comma separated.
type FilterQuery struct {
	WorkingTime     string   `form:"workingTime" binding:"omitempty,oneof=fullTime partTime"`
	JobLocation     string   `form:"jobLocation" binding:"omitempty,oneof=onsite remotely hybrid"`
	SeniorityLevel  string   `form:"seniorityLevel" binding:"omitempty,oneof=junior Mid-Level senior Team-Lead CTO"`
	JobTitle        string   `form:"jobTitle"`
	TechnicalSkills []string `form:"technicalSkills"`
}

// ApplyForm is the multipart form of POST /jobs/apply. Skill fields are
// comma separated lists.
type ApplyForm struct {
	ID             string   `form:"id" binding:"required,objectid"`
	UserTechSkills []string `form:"userTechSkills" binding:"required,min=1"`
	UserSoftSkills []string `form:"userSoftSkills"`
}

// ResumeField is the multipart field carrying the resume.
const ResumeField = "userResume"

// Route schemas
var (
	AddJobSchema      = validation.Schema{Body: AddJobRequest{}}
	UpdateJobSchema   = validation.Schema{Body: UpdateJobRequest{}}
	DeleteJobSchema   = validation.Schema{Body: DeleteJobRequest{}}
	ListJobsSchema    = validation.Schema{}
	CompanyJobsSchema = validation.Schema{Query: CompanyJobsQuery{}}
	FilterSchema      = validation.Schema{Query: FilterQuery{}}
)

// ApplySchema requires one PDF resume of at most maxBytes.
func ApplySchema(maxBytes int64) validation.Schema {
	return validation.Schema{
		Body: ApplyForm{},
		File: &validation.FileRule{
			Field:     ResumeField,
			Required:  true,
			MIMETypes: []string{validation.PDF},
			MaxBytes:  maxBytes,
		},
	}
}
