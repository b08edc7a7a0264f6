package requests

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	TOTPCode string `json:"totp_code" form:"totp_code"`
}

type SignupRequest struct {
	Name         string `json:"name" form:"name" validate:"required,max=120"`
	Email        string `json:"email" form:"email" validate:"required,email,max=120"`
	Password     string `json:"password" form:"password" validate:"required"`
	DOB          string `json:"dob" form:"dob"`
	Department   string `json:"department" form:"department" validate:"max=100"`
	CGPA         string `json:"cgpa" form:"cgpa"`
	UniversityID string `json:"university_id" form:"university_id"`
}

type StudentProfileRequest struct {
	Name       string `json:"name" form:"name" validate:"required,max=120"`
	DOB        string `json:"dob" form:"dob"`
	Department string `json:"department" form:"department" validate:"max=100"`
	CGPA       string `json:"cgpa" form:"cgpa"`
}

type MentorProfileRequest struct {
	Name       string `json:"name" form:"name" validate:"required,max=120"`
	Department string `json:"department" form:"department" validate:"max=100"`
}

type TOTPCodeRequest struct {
	Code string `json:"code" form:"code" validate:"required,len=6"`
}
