package association

type CreateAssociationRequest struct {
	AppraiseeID string `json:"appraisee_id"`
	AppraiserID string `json:"appraiser_id"`
}

type ReassignRequest struct {
	AppraiserID string `json:"appraiser_id"`
}

type AppraiserResponse struct {
	AppraiseeID string `json:"appraisee_id"`
	AppraiserID string `json:"appraiser_id"`
}

type AppraiseesResponse struct {
	AppraiserID  string   `json:"appraiser_id"`
	AppraiseeIDs []string `json:"appraisee_ids"`
}
