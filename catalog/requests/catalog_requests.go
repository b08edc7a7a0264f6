package requests

type CreateUniversityRequest struct {
	Name         string `json:"name" form:"name" validate:"required,min=2,max=150"`
	Country      string `json:"country" form:"country" validate:"required,max=100"`
	Ranking      *int   `json:"ranking" form:"ranking" validate:"omitempty,min=1"`
	ContactEmail string `json:"contact_email" form:"contact_email" validate:"omitempty,email"`
}

type CreateMentorRequest struct {
	Name         string `json:"name" form:"name" validate:"required,min=2,max=120"`
	Email        string `json:"email" form:"email" validate:"required,email"`
	Password     string `json:"password" form:"password" validate:"required"`
	Department   string `json:"department" form:"department" validate:"max=100"`
	UniversityID string `json:"university_id" form:"university_id" validate:"omitempty,uuid"`
}

type CreateProgramRequest struct {
	Title        string `json:"title" form:"title" validate:"required,min=2,max=200"`
	Description  string `json:"description" form:"description"`
	ProgramType  string `json:"program_type" form:"program_type" validate:"max=50"`
	Duration     *int   `json:"duration" form:"duration" validate:"omitempty,min=1"`
	Eligibility  string `json:"eligibility" form:"eligibility"`
	StartDate    string `json:"start_date" form:"start_date"`
	EndDate      string `json:"end_date" form:"end_date"`
	UniversityID string `json:"university_id" form:"university_id" validate:"required,uuid"`
	MentorID     string `json:"mentor_id" form:"mentor_id" validate:"omitempty,uuid"`
}

type AddRequiredDocumentRequest struct {
	DocumentName string `json:"document_name" form:"document_name" validate:"required,max=150"`
}

type CreateScholarshipRequest struct {
	ProgramID           string `json:"program_id" form:"program_id" validate:"required,uuid"`
	Name                string `json:"name" form:"name" validate:"required,max=150"`
	Amount              string `json:"amount" form:"amount" validate:"required"`
	EligibilityCriteria string `json:"eligibility_criteria" form:"eligibility_criteria"`
}

type CreateHousingRequest struct {
	UniversityID string `json:"university_id" form:"university_id" validate:"required,uuid"`
	Location     string `json:"location" form:"location" validate:"required,max=150"`
	RoomType     string `json:"room_type" form:"room_type" validate:"required,max=50"`
	Rent         string `json:"rent" form:"rent" validate:"required"`
}
