package tables

type DeleteItemResult struct {
	body []byte
}

// NewDeleteItemResult wraps the raw response of a delete operation. Delete
// responses are passed through untransformed.
func NewDeleteItemResult(body []byte) *DeleteItemResult {
	return &DeleteItemResult{
		body: body,
	}
}

func (r DeleteItemResult) Body() []byte {
	return r.body
}
