// internal/domain/compliance/dto.go
package compliance

// CreateProjectRequest for new compliance projects
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Standard    string `json:"standard" binding:"required"`
}

// ReviewTestCaseRequest records a review verdict
type ReviewTestCaseRequest struct {
	Verdict string `json:"verdict" binding:"required,oneof=approved changes_requested"`
	Comment string `json:"comment"`
}
