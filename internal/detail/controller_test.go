package detail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docrepo/internal/combobox"
	"docrepo/internal/domain"
	"docrepo/mocks"
)

const docID int64 = 7

func sz(n int64) *int64 { return &n }

func testDoc(current int, caps domain.Capabilities) *domain.Document {
	return &domain.Document{
		ID:                   docID,
		Title:                "Budget",
		Description:          "FY plan",
		Tags:                 []string{"finance"},
		CurrentVersionNumber: current,
		Capabilities:         caps,
	}
}

func testVersions(n int) []domain.Version {
	vs := make([]domain.Version, 0, n)
	for i := n; i >= 1; i-- {
		vs = append(vs, domain.Version{ID: int64(100 + i), VersionNumber: i, FileSize: sz(int64(i * 1000))})
	}
	return vs
}

var allCaps = domain.Capabilities{CanUploadVersion: true, CanEditMetadata: true}

func loadedController(t *testing.T, api *mocks.MockDocumentAPI, caps domain.Capabilities) *Controller {
	t.Helper()
	api.On("GetDocument", mock.Anything, docID).Return(testDoc(2, caps), nil).Once()
	api.On("ListVersions", mock.Anything, docID).Return(testVersions(2), nil).Once()
	c := NewController(api, docID, nil)
	require.NoError(t, c.Load(context.Background()))
	require.Equal(t, domain.StateReady, c.State())
	return c
}

func TestController_LoadSuccess(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	c := loadedController(t, api, allCaps)

	assert.Empty(t, c.Err())
	assert.Equal(t, "Budget", c.Document().Title)
	assert.Len(t, c.Versions(), 2)

	latest, ok := c.LatestVersion()
	require.True(t, ok)
	assert.Equal(t, 2, latest.VersionNumber)
	assert.Equal(t, int64(2000), *latest.FileSize)

	draft := c.Draft()
	assert.Equal(t, "Budget", draft.Title)
	assert.Equal(t, "FY plan", draft.Description)
	assert.Equal(t, []string{"finance"}, draft.Tags)
	assert.Equal(t, []string{"finance"}, c.TagSelector().Selected())
	assert.Equal(t, allCaps, c.Capabilities())
}

func TestController_LoadFailureThenRetry(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	api.On("GetDocument", mock.Anything, docID).
		Return(nil, &domain.APIError{Kind: domain.KindServer, Status: 404, Message: "Document not found"}).Once()

	c := NewController(api, docID, nil)
	err := c.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.StateFailed, c.State())
	assert.Equal(t, "Document not found", c.Err())
	assert.Nil(t, c.Document())

	api.On("GetDocument", mock.Anything, docID).Return(testDoc(1, allCaps), nil).Once()
	api.On("ListVersions", mock.Anything, docID).Return(testVersions(1), nil).Once()
	require.NoError(t, c.Retry(context.Background()))
	assert.Equal(t, domain.StateReady, c.State())
	assert.Empty(t, c.Err())
	api.AssertExpectations(t)
}

func TestController_LoadVersionsFailureUsesFallback(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	api.On("GetDocument", mock.Anything, docID).Return(testDoc(1, allCaps), nil)
	api.On("ListVersions", mock.Anything, docID).Return(nil, errors.New("socket closed"))

	c := NewController(api, docID, nil)
	require.Error(t, c.Load(context.Background()))
	assert.Equal(t, domain.StateFailed, c.State())
	assert.Equal(t, domain.MsgLoadFailed, c.Err())
}

func TestController_LatestVersionMissing(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	api.On("GetDocument", mock.Anything, docID).Return(testDoc(5, allCaps), nil)
	api.On("ListVersions", mock.Anything, docID).Return(testVersions(2), nil)

	c := NewController(api, docID, nil)
	require.NoError(t, c.Load(context.Background()))
	_, ok := c.LatestVersion()
	assert.False(t, ok)
}

func TestController_SupersededLoadIsDropped(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	started := make(chan struct{})
	release := make(chan struct{})

	stale := testDoc(1, allCaps)
	stale.Title = "stale"
	api.On("GetDocument", mock.Anything, docID).Return(stale, nil).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Once()
	api.On("GetDocument", mock.Anything, docID).Return(testDoc(2, allCaps), nil).Once()
	api.On("ListVersions", mock.Anything, docID).Return(testVersions(2), nil)

	c := NewController(api, docID, nil)
	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-started

	require.NoError(t, c.Load(context.Background()))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, "Budget", c.Document().Title)
	assert.Equal(t, 2, c.Document().CurrentVersionNumber)
}

func TestController_UploadRequiresCapability(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	c := loadedController(t, api, domain.Capabilities{CanEditMetadata: true})
	c.SelectFile(domain.FileFromBytes("a.txt", []byte("x")))

	err := c.UploadNewVersion(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotPermitted)
	api.AssertNotCalled(t, "UploadVersion", mock.Anything, mock.Anything, mock.Anything)
}

func TestController_UploadRequiresFile(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	c := loadedController(t, api, allCaps)

	err := c.UploadNewVersion(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoFile)
	assert.Empty(t, c.Err())
	assert.Equal(t, domain.FlowIdle, c.UploadFlow().State())
}

func TestController_UploadBeforeLoad(t *testing.T) {
	c := NewController(new(mocks.MockDocumentAPI), docID, nil)
	assert.ErrorIs(t, c.UploadNewVersion(context.Background()), domain.ErrNotLoaded)
	assert.ErrorIs(t, c.SaveMetadata(context.Background()), domain.ErrNotLoaded)
}

func TestController_UploadFailureKeepsFile(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	c := loadedController(t, api, allCaps)
	file := domain.FileFromBytes("v3.pdf", []byte("pdf"))
	c.SelectFile(file)

	api.On("UploadVersion", mock.Anything, docID, file).
		Return(nil, &domain.APIError{Kind: domain.KindServer, Status: 413, Message: "File too large"}).Once()

	err := c.UploadNewVersion(context.Background())
	require.Error(t, err)
	assert.Equal(t, "File too large", c.Err())
	assert.Same(t, file, c.Draft().PendingFile)
	assert.Equal(t, domain.FlowFailed, c.UploadFlow().State())
	assert.Equal(t, domain.StateReady, c.State())

	// Retry without choosing the file again.
	api.On("UploadVersion", mock.Anything, docID, file).Return(&domain.Version{VersionNumber: 3}, nil).Once()
	api.On("GetDocument", mock.Anything, docID).Return(testDoc(3, allCaps), nil).Once()
	api.On("ListVersions", mock.Anything, docID).Return(testVersions(3), nil).Once()

	require.NoError(t, c.UploadNewVersion(context.Background()))
	assert.Empty(t, c.Err())
	assert.Nil(t, c.Draft().PendingFile)
	assert.Equal(t, domain.FlowSucceeded, c.UploadFlow().State())

	latest, ok := c.LatestVersion()
	require.True(t, ok)
	assert.Equal(t, 3, latest.VersionNumber)
	api.AssertExpectations(t)
}

func TestController_UploadIsSerialized(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	c := loadedController(t, api, allCaps)
	file := domain.FileFromBytes("x.bin", []byte("x"))
	c.SelectFile(file)

	started := make(chan struct{})
	release := make(chan struct{})
	api.On("UploadVersion", mock.Anything, docID, file).Return(&domain.Version{VersionNumber: 3}, nil).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Once()
	api.On("GetDocument", mock.Anything, docID).Return(testDoc(3, allCaps), nil).Once()
	api.On("ListVersions", mock.Anything, docID).Return(testVersions(3), nil).Once()

	done := make(chan error, 1)
	go func() { done <- c.UploadNewVersion(context.Background()) }()
	<-started

	assert.True(t, c.UploadFlow().Busy())
	assert.ErrorIs(t, c.UploadNewVersion(context.Background()), domain.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.UploadFlow().Busy())
	api.AssertNumberOfCalls(t, "UploadVersion", 1)
}

func TestController_SaveDuringUploadIsBusy(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	c := loadedController(t, api, allCaps)
	file := domain.FileFromBytes("x.bin", []byte("x"))
	c.SelectFile(file)

	started := make(chan struct{})
	release := make(chan struct{})
	api.On("UploadVersion", mock.Anything, docID, file).Return(&domain.Version{VersionNumber: 3}, nil).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Once()
	api.On("GetDocument", mock.Anything, docID).Return(testDoc(3, allCaps), nil)
	api.On("ListVersions", mock.Anything, docID).Return(testVersions(3), nil)

	done := make(chan error, 1)
	go func() { done <- c.UploadNewVersion(context.Background()) }()
	<-started

	c.SetTitle("Renamed")
	assert.ErrorIs(t, c.SaveMetadata(context.Background()), domain.ErrBusy)
	assert.Equal(t, domain.FlowIdle, c.SaveFlow().State())
	api.AssertNotCalled(t, "UpdateDocument", mock.Anything, mock.Anything, mock.Anything)

	close(release)
	require.NoError(t, <-done)

	api.On("UpdateDocument", mock.Anything, docID, mock.Anything).Return(testDoc(3, allCaps), nil).Once()
	require.NoError(t, c.SaveMetadata(context.Background()))
	api.AssertNumberOfCalls(t, "UpdateDocument", 1)
}

func TestController_UploadDuringSaveIsBusy(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	c := loadedController(t, api, allCaps)
	c.SelectFile(domain.FileFromBytes("x.bin", []byte("x")))

	started := make(chan struct{})
	release := make(chan struct{})
	api.On("UpdateDocument", mock.Anything, docID, mock.Anything).Return(testDoc(2, allCaps), nil).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Once()
	api.On("GetDocument", mock.Anything, docID).Return(testDoc(2, allCaps), nil).Once()
	api.On("ListVersions", mock.Anything, docID).Return(testVersions(2), nil).Once()

	done := make(chan error, 1)
	go func() { done <- c.SaveMetadata(context.Background()) }()
	<-started

	assert.ErrorIs(t, c.UploadNewVersion(context.Background()), domain.ErrBusy)
	assert.Equal(t, domain.FlowIdle, c.UploadFlow().State())
	assert.NotNil(t, c.Draft().PendingFile)

	close(release)
	require.NoError(t, <-done)
	api.AssertNotCalled(t, "UploadVersion", mock.Anything, mock.Anything, mock.Anything)
}

func TestController_SelectorsTakeSettings(t *testing.T) {
	c := NewController(new(mocks.MockDocumentAPI), docID, nil, combobox.WithBlurDelay(250*time.Millisecond))
	assert.Equal(t, 250*time.Millisecond, c.TagSelector().BlurDelay())
	assert.Equal(t, 250*time.Millisecond, c.DepartmentSelector().BlurDelay())

	assert.Equal(t, combobox.DefaultBlurDelay, NewController(new(mocks.MockDocumentAPI), docID, nil).TagSelector().BlurDelay())
}

func TestController_SaveSendsOnlyPopulatedFields(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	c := loadedController(t, api, allCaps)

	c.SetTitle("")
	c.SetDescription("Revised")
	sel := c.TagSelector()
	sel.SetQuery("urgent")
	require.True(t, sel.Enter())

	want := domain.DocumentUpdate{Description: "Revised", Tags: []string{"finance", "urgent"}}
	api.On("UpdateDocument", mock.Anything, docID, want).Return(testDoc(2, allCaps), nil).Once()
	api.On("GetDocument", mock.Anything, docID).Return(testDoc(2, allCaps), nil).Once()
	api.On("ListVersions", mock.Anything, docID).Return(testVersions(2), nil).Once()

	require.NoError(t, c.SaveMetadata(context.Background()))
	assert.Equal(t, domain.FlowSucceeded, c.SaveFlow().State())
	api.AssertExpectations(t)
}

func TestController_SaveWithDepartments(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	c := loadedController(t, api, allCaps)
	api.On("ListTags", mock.Anything).Return(nil, errors.New("down"))
	api.On("ListDepartments", mock.Anything).Return([]domain.Department{{ID: 1, Name: "Finance"}, {ID: 2, Name: "Legal"}}, nil)
	c.LoadCatalogs(context.Background())

	deps := c.DepartmentSelector()
	deps.SetQuery("leg")
	require.True(t, deps.Enter())
	assert.Equal(t, []int64{2}, c.Draft().DepartmentIDs)
	assert.Empty(t, c.TagSelector().Pool())

	want := domain.DocumentUpdate{Title: "Budget", Description: "FY plan", Tags: []string{"finance"}, PermissionDepartmentIDs: []int64{2}}
	api.On("UpdateDocument", mock.Anything, docID, want).Return(testDoc(2, allCaps), nil).Once()
	api.On("GetDocument", mock.Anything, docID).Return(testDoc(2, allCaps), nil).Once()
	api.On("ListVersions", mock.Anything, docID).Return(testVersions(2), nil).Once()

	require.NoError(t, c.SaveMetadata(context.Background()))
	// Department ids are not returned by the server and survive the reload.
	assert.Equal(t, []int64{2}, c.Draft().DepartmentIDs)
}

func TestController_SaveFailureKeepsDraft(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	c := loadedController(t, api, allCaps)
	c.SetTitle("New title")

	api.On("UpdateDocument", mock.Anything, docID, mock.Anything).Return(nil, errors.New("boom")).Once()

	require.Error(t, c.SaveMetadata(context.Background()))
	assert.Equal(t, domain.MsgSaveFailed, c.Err())
	assert.Equal(t, "New title", c.Draft().Title)
	assert.Equal(t, domain.FlowFailed, c.SaveFlow().State())
}

func TestController_SaveRequiresCapability(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	c := loadedController(t, api, domain.Capabilities{CanUploadVersion: true})

	assert.ErrorIs(t, c.SaveMetadata(context.Background()), domain.ErrNotPermitted)
	api.AssertNotCalled(t, "UpdateDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestController_Download(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	c := NewController(api, docID, nil)
	api.On("Download", mock.Anything, docID, domain.VersionNumber(1)).
		Return(&domain.Download{Filename: "a.pdf", Body: []byte("x")}, nil)
	api.On("Download", mock.Anything, docID, domain.Latest).
		Return(nil, &domain.APIError{Kind: domain.KindServer, Status: 404})

	dl, err := c.Download(context.Background(), domain.VersionNumber(1))
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", dl.Filename)

	_, err = c.Download(context.Background(), domain.Latest)
	var apiErr *domain.APIError
	assert.ErrorAs(t, err, &apiErr)
}
