package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/domain"
)

// mockPolicyStore implements domain.PolicyStore for testing
type mockPolicyStore struct {
	policies map[string]domain.PrivacyPolicy
}

func (m *mockPolicyStore) GetPolicy(userID string) domain.PrivacyPolicy {
	if p, ok := m.policies[userID]; ok {
		return p
	}
	return consentAll()
}

// mockReader implements domain.ActivityReader for testing
type mockReader struct {
	records   []domain.ActivityRecord
	err       error
	gotIDs    []string
	gotLimit  int
	callCount int
}

func (m *mockReader) FetchRecords(ctx context.Context, subjectIDs []string, limit int) ([]domain.ActivityRecord, error) {
	m.callCount++
	m.gotIDs = subjectIDs
	m.gotLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func newQueryServiceForTest(reader *mockReader, policies map[string]domain.PrivacyPolicy) *QueryService {
	return NewQueryService(
		NewResolver(testDirectory()),
		NewFilter(),
		&mockPolicyStore{policies: policies},
		reader,
		zap.NewNop(),
	)
}

func TestQueryService_SelfQueryReturnsOwnRecords(t *testing.T) {
	reader := &mockReader{records: []domain.ActivityRecord{fullRecord("e1")}}
	svc := newQueryServiceForTest(reader, nil)
	emp := requester("e1", domain.RoleEmployee, "eng", "org-1")

	result, err := svc.Query(context.Background(), emp, ActivityQuery{})
	require.NoError(t, err)

	assert.Equal(t, domain.ScopeSelf, result.Scope)
	require.Len(t, result.Records, 1)
	assert.Equal(t, []string{"e1"}, reader.gotIDs)
	assert.Equal(t, 50, reader.gotLimit) // default
}

func TestQueryService_DeniedBeforeAnyFetch(t *testing.T) {
	reader := &mockReader{}
	svc := newQueryServiceForTest(reader, nil)
	emp := requester("e1", domain.RoleEmployee, "eng", "org-1")

	_, err := svc.Query(context.Background(), emp, ActivityQuery{TargetUserID: "e2"})

	var denied *ErrAccessDenied
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, domain.ScopeSelf, denied.Scope)
	assert.Equal(t, 0, reader.callCount)
}

func TestQueryService_ManagerQueryAppliesSubjectConsent(t *testing.T) {
	noSharing := consentAll()
	noSharing.ShareDataWithManager = false

	reader := &mockReader{records: []domain.ActivityRecord{
		fullRecord("e1"),
		fullRecord("e2"),
	}}
	svc := newQueryServiceForTest(reader, map[string]domain.PrivacyPolicy{
		"e1": noSharing,
	})
	mgr := requester("m1", domain.RoleManager, "eng", "org-1")

	result, err := svc.Query(context.Background(), mgr, ActivityQuery{})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	// e1 withheld sharing consent; e2 did not.
	assert.Nil(t, result.Records[0].WindowTitle)
	assert.Equal(t, "browser", result.Records[0].AppName)
	require.NotNil(t, result.Records[1].WindowTitle)
	assert.Equal(t, "Google Chrome", result.Records[1].AppName)
}

func TestQueryService_UnknownRoleRejected(t *testing.T) {
	svc := newQueryServiceForTest(&mockReader{}, nil)

	_, err := svc.Query(context.Background(), domain.Requester{ID: "x", Role: "contractor"}, ActivityQuery{})
	require.Error(t, err)

	var denied *ErrAccessDenied
	assert.False(t, errors.As(err, &denied))
}

func TestQueryService_LimitValidation(t *testing.T) {
	svc := newQueryServiceForTest(&mockReader{}, nil)
	emp := requester("e1", domain.RoleEmployee, "eng", "org-1")

	_, err := svc.Query(context.Background(), emp, ActivityQuery{Limit: 500})
	assert.Error(t, err)
}

func TestQueryService_FetchErrorPropagates(t *testing.T) {
	reader := &mockReader{err: errors.New("store offline")}
	svc := newQueryServiceForTest(reader, nil)
	emp := requester("e1", domain.RoleEmployee, "eng", "org-1")

	_, err := svc.Query(context.Background(), emp, ActivityQuery{})
	assert.ErrorContains(t, err, "fetch records")
}
