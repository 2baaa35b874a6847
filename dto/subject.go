package dto

type SubjectResponse struct {
	ID      string `json:"id" example:"0198c5b6-1f2a-7c3d-9e4f-5a6b7c8d9e0f"`
	Code    string `json:"code" example:"MATH201"`
	Name    string `json:"name" example:"Calculus II"`
	Faculty string `json:"faculty" example:"Science"`
}

type SubjectListResponse struct {
	Subjects []SubjectResponse `json:"subjects"`
	Total    int               `json:"total" example:"24"`
}
