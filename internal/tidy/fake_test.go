package tidy

import (
	"context"
	"strings"
)

// fakeMailbox is an in-memory Mailbox for engine tests. Listing calls
// consume pages in order; the call logs record every mutation.
type fakeMailbox struct {
	pages   []*MessagePage
	listErr error

	labelPages [][]Label
	labelsErr  error

	createErr    error
	createResult Label

	headers    map[string]map[string]string
	headersErr error

	modifyErrs map[int]error
	deleteErrs map[int]error

	listCalls   []listCall
	labelCalls  int
	createCalls []string
	headerCalls []string
	modifyCalls []modifyCall
	deleteCalls [][]string
}

type listCall struct {
	query     string
	pageToken string
	pageSize  int64
}

type modifyCall struct {
	ids    []string
	add    []string
	remove []string
}

func (f *fakeMailbox) ListMessages(ctx context.Context, query, pageToken string, pageSize int64) (*MessagePage, error) {
	f.listCalls = append(f.listCalls, listCall{query: query, pageToken: pageToken, pageSize: pageSize})
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.pages) == 0 {
		return &MessagePage{}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeMailbox) BatchModify(ctx context.Context, ids, addLabelIDs, removeLabelIDs []string) error {
	call := len(f.modifyCalls)
	f.modifyCalls = append(f.modifyCalls, modifyCall{ids: ids, add: addLabelIDs, remove: removeLabelIDs})
	return f.modifyErrs[call]
}

func (f *fakeMailbox) BatchDelete(ctx context.Context, ids []string) error {
	call := len(f.deleteCalls)
	f.deleteCalls = append(f.deleteCalls, ids)
	return f.deleteErrs[call]
}

func (f *fakeMailbox) ListLabels(ctx context.Context) ([]Label, error) {
	f.labelCalls++
	if f.labelsErr != nil {
		return nil, f.labelsErr
	}
	if len(f.labelPages) == 0 {
		return nil, nil
	}
	labels := f.labelPages[0]
	if len(f.labelPages) > 1 {
		f.labelPages = f.labelPages[1:]
	}
	return labels, nil
}

func (f *fakeMailbox) CreateLabel(ctx context.Context, name string) (Label, error) {
	f.createCalls = append(f.createCalls, name)
	if f.createErr != nil {
		return Label{}, f.createErr
	}
	if f.createResult.ID != "" {
		return f.createResult, nil
	}
	return Label{ID: "Label_" + name, Name: name}, nil
}

func (f *fakeMailbox) GetMessageHeaders(ctx context.Context, id string, names []string) (map[string]string, error) {
	f.headerCalls = append(f.headerCalls, id)
	if f.headersErr != nil {
		return nil, f.headersErr
	}
	result := make(map[string]string)
	for name, value := range f.headers[id] {
		for _, wanted := range names {
			if strings.EqualFold(name, wanted) {
				result[wanted] = value
			}
		}
	}
	return result, nil
}

// refPage builds a page of message refs with the given ids.
func refPage(nextToken string, ids ...string) *MessagePage {
	refs := make([]MessageRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, MessageRef{ID: id})
	}
	return &MessagePage{Refs: refs, NextPageToken: nextToken}
}

// scriptPrompter answers prompts from a fixed script and records them.
type scriptPrompter struct {
	answers []string
	prompts []string
}

func (p *scriptPrompter) next() string {
	if len(p.answers) == 0 {
		return ""
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer
}

func (p *scriptPrompter) Confirm(prompt string) (bool, error) {
	p.prompts = append(p.prompts, prompt)
	return strings.EqualFold(p.next(), "y"), nil
}

func (p *scriptPrompter) Input(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	return p.next(), nil
}
