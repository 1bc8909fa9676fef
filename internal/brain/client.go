package brain

import "context"

// Client implements Brain on top of any Transport: it renders the request,
// submits it, and decodes the answer when an expected format was set.
type Client struct {
	transport Transport
}

func NewClient(transport Transport) *Client {
	return &Client{transport: transport}
}

// Ask performs one LLM round-trip. When the request carries an expected
// format, a parse or schema failure is terminal for the call and nothing is
// returned; there is no automatic repair prompt.
func (c *Client) Ask(ctx context.Context, req LLMRequest) (*Answer, error) {
	query, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	raw, err := c.transport.SubmitQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	answer := &Answer{Query: query, Raw: raw}
	if req.ExpectedFormat == nil {
		return answer, nil
	}

	value, err := req.ExpectedFormat.Decode(raw)
	if err != nil {
		return nil, err
	}
	answer.Value = value
	return answer, nil
}
