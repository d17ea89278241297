package domain

// UserRef is the slice of the user directory the engine needs: attribution
// on approvals and adjustments. User CRUD itself is a collaborator concern.
type UserRef struct {
	UserID      string `json:"userID"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// ProjectRef is the slice of the project directory the engine needs: the
// project's name and which review tiers it organizationally requires.
type ProjectRef struct {
	ProjectID          string `json:"projectID"`
	Name               string `json:"name"`
	LeadReviewRequired bool   `json:"leadReviewRequired"`
	Archived           bool   `json:"archived"`
}
