package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"freightdesk/internal/domain"
	"freightdesk/internal/mapper"
	"freightdesk/internal/normalize"
	"freightdesk/internal/pipeline"
	"freightdesk/internal/port"
	"freightdesk/internal/service"
	"freightdesk/mocks"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fixture struct {
	docRepo    *mocks.MockDocumentRepo
	resultRepo *mocks.MockExtractionRepo
	storage    *mocks.MockObjectStorage
	pipeline   *mocks.MockPipeline
	dispatcher *mocks.MockDispatcher
	svc        service.ExtractionService
}

func newFixture(maxBytes int64) *fixture {
	f := &fixture{
		docRepo:    new(mocks.MockDocumentRepo),
		resultRepo: new(mocks.MockExtractionRepo),
		storage:    new(mocks.MockObjectStorage),
		pipeline:   new(mocks.MockPipeline),
		dispatcher: new(mocks.MockDispatcher),
	}
	f.svc = service.NewExtractionService(
		f.docRepo, f.resultRepo, f.storage, f.pipeline,
		normalize.New(nil, normalize.Options{}),
		mapper.New(mapper.DefaultTable(nil)),
		f.dispatcher,
		service.ExtractionConfig{
			Bucket:           "freightdesk-documents",
			MaxDocumentBytes: maxBytes,
			Defaults:         domain.RequestContext{DefaultCountry: "nl", Locale: "en"},
		},
	)
	return f
}

func successResult() *domain.ExtractionResult {
	fields := pipeline.Merge([]domain.ExtractionField{
		{Key: domain.FieldRouteOrigin, Value: domain.StringValue("Rotterdam"), Confidence: 0.9, Source: domain.SourceAI},
		{Key: domain.FieldRouteDestination, Value: domain.StringValue("Lagos"), Confidence: 0.9, Source: domain.SourceAI},
		{Key: domain.FieldVehicleModel, Value: domain.StringValue("TFG435s"), Confidence: 0.9, Source: domain.SourceAI},
		{Key: domain.FieldContactEmail, Value: domain.StringValue("jan@van-dijk-transport.nl"), Confidence: 0.9, Source: domain.SourcePattern},
	})
	return &domain.ExtractionResult{Fields: fields, Confidence: 0.4, Status: domain.ExtractionStatusPartial}
}

func failedResult(kind domain.ErrorKind) *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Fields: pipeline.Merge(nil),
		Status: domain.ExtractionStatusFailed,
		Errors: []domain.ExtractionError{
			{Strategy: "ai_text:cheap", Kind: kind, Message: "upstream unavailable"},
			{Kind: domain.ErrorKindTotalFailure, Message: "every strategy failed"},
		},
	}
}

func TestSubmit_TextRunsFullFlow(t *testing.T) {
	f := newFixture(0)
	result := successResult()

	f.docRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
		return d.Status == domain.DocumentStatusProcessing && d.Channel == domain.ChannelChat && d.DefaultCountry == "NL" && d.StorageKey == ""
	})).Return(nil)
	f.pipeline.On("Run", mock.Anything, mock.MatchedBy(func(raw *domain.RawDocument) bool {
		return raw.Text == "TFG435s van Rotterdam naar Lagos" && raw.Channel == domain.ChannelChat
	})).Run(func(args mock.Arguments) {
		result.DocumentID = args.Get(1).(*domain.RawDocument).ID
	}).Return(result, nil)
	f.resultRepo.On("SaveResult", mock.Anything, result).Return(nil)
	f.dispatcher.On("Dispatch", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("*domain.MappedPayload")).
		Return([]domain.DispatchResult{{Target: "postgres", Status: domain.DispatchStatusDelivered}})
	f.resultRepo.On("SaveDispatchResults", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	out, err := f.svc.Submit(context.Background(), service.SubmitInput{
		Text:    "TFG435s van Rotterdam naar Lagos",
		Channel: domain.ChannelChat,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DocumentStatusCompleted, out.Document.Status)
	assert.Equal(t, domain.ExtractionStatusPartial, out.Document.ExtractionStatus)
	assert.Equal(t, 1, out.Document.Attempts)
	assert.NotNil(t, out.Document.ExtractedAt)
	require.NotNil(t, out.Payload)
	company, ok := mapper.Lookup(out.Payload.Object(), "COMPANY_NAME")
	require.True(t, ok)
	assert.Equal(t, "Van Dijk Transport", *company.StringValue)
	country, _ := mapper.Lookup(out.Payload.Object(), "COUNTRY")
	assert.Equal(t, "NL", *country.StringValue)
	assert.Len(t, out.Dispatch, 1)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	f.docRepo.AssertExpectations(t)
	f.pipeline.AssertExpectations(t)
	f.dispatcher.AssertExpectations(t)
	f.resultRepo.AssertExpectations(t)
}

func TestSubmit_FailedResultIsNotMapped(t *testing.T) {
	f := newFixture(0)

	f.docRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.pipeline.On("Run", mock.Anything, mock.Anything).Return(failedResult(domain.ErrorKindSchemaViolation), nil)
	f.resultRepo.On("SaveResult", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
		return d.Status == domain.DocumentStatusFailed
	})).Return(nil)

	out, err := f.svc.Submit(context.Background(), service.SubmitInput{Text: "hello"})
	require.NoError(t, err)

	assert.Nil(t, out.Payload)
	assert.Nil(t, out.Dispatch)
	assert.Equal(t, domain.DocumentStatusFailed, out.Document.Status)
	assert.Equal(t, "ai_text:cheap: upstream unavailable; every strategy failed", out.Document.LastError)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	f.resultRepo.AssertNotCalled(t, "SavePayload", mock.Anything, mock.Anything)
	f.resultRepo.AssertNotCalled(t, "SaveDispatchResults", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input service.SubmitInput
		want  error
	}{
		{"empty submission", service.SubmitInput{Text: "  \n "}, domain.ErrEmptyDocument},
		{"too large", service.SubmitInput{Filename: "scan.png", Content: append(pngBytes, make([]byte, 64)...)}, domain.ErrFileTooLarge},
		{"unsupported extension", service.SubmitInput{Filename: "quote.exe", Content: []byte("MZ\x90\x00")}, domain.ErrUnsupportedFileType},
		{"content does not match extension", service.SubmitInput{Filename: "scan.png", Content: []byte("not an image")}, domain.ErrUnsupportedFileType},
		{"unknown channel", service.SubmitInput{Text: "quote please", Channel: "fax"}, domain.ErrInvalidChannel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(32)

			_, err := f.svc.Submit(context.Background(), tt.input)

			assert.ErrorIs(t, err, tt.want)
			f.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_UploadFailure(t *testing.T) {
	f := newFixture(0)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := f.svc.Submit(context.Background(), service.SubmitInput{Filename: "scan.png", Content: pngBytes})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	f.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_AsyncQueuesDocument(t *testing.T) {
	f := newFixture(0)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "freightdesk-documents" && strings.HasSuffix(in.Key, "/scan.png") && in.ContentType == "image/png"
	})).Return(&port.UploadOutput{}, nil)
	f.docRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
		return d.Status == domain.DocumentStatusQueued && d.Channel == domain.ChannelImage && d.MIMEType == "image/png"
	})).Return(nil)

	out, err := f.svc.Submit(context.Background(), service.SubmitInput{Filename: "scan.png", Content: pngBytes, Async: true})
	require.NoError(t, err)

	assert.Equal(t, domain.DocumentStatusQueued, out.Document.Status)
	assert.Nil(t, out.Result)
	f.pipeline.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	f.storage.AssertExpectations(t)
}

func TestSubmit_EmailTextLayer(t *testing.T) {
	f := newFixture(0)
	eml := "From: =?UTF-8?Q?J=C3=BCrgen?= <j@spedition.de>\r\nSubject: Anfrage Stapler\r\nX-Mailer: test\r\n\r\nBitte Angebot von Hamburg nach Tema\r\n"

	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.docRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.pipeline.On("Run", mock.Anything, mock.MatchedBy(func(raw *domain.RawDocument) bool {
		return raw.MIMEType == "message/rfc822" && raw.Channel == domain.ChannelEmail &&
			strings.Contains(raw.Text, "From: Jürgen <j@spedition.de>") &&
			strings.Contains(raw.Text, "Subject: Anfrage Stapler") &&
			!strings.Contains(raw.Text, "X-Mailer") &&
			strings.Contains(raw.Text, "Bitte Angebot von Hamburg nach Tema")
	})).Return(failedResult(domain.ErrorKindStrategyFailure), nil)
	f.resultRepo.On("SaveResult", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Submit(context.Background(), service.SubmitInput{Filename: "anfrage.eml", Content: []byte(eml)})
	require.NoError(t, err)
	f.pipeline.AssertExpectations(t)
}

func TestExtract_RejectsConcurrentRunForSameDocument(t *testing.T) {
	f := newFixture(0)
	doc := &domain.Document{ID: uuid.New(), Text: "van Antwerpen naar Tema", MIMEType: "text/plain", Channel: domain.ChannelText}

	started := make(chan struct{})
	release := make(chan struct{})
	f.pipeline.On("Run", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(failedResult(domain.ErrorKindTimeout), nil).Once()
	f.resultRepo.On("SaveResult", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.svc.Extract(context.Background(), doc, domain.RequestContext{})
		assert.NoError(t, err)
	}()

	<-started
	_, err := f.svc.Extract(context.Background(), &domain.Document{ID: doc.ID}, domain.RequestContext{})
	assert.ErrorIs(t, err, domain.ErrExtractionInProgress)

	close(release)
	wg.Wait()
	f.pipeline.AssertNumberOfCalls(t, "Run", 1)
}

func TestExtract_PipelineAborted(t *testing.T) {
	f := newFixture(0)
	doc := &domain.Document{ID: uuid.New(), Text: "quote", MIMEType: "text/plain"}

	f.pipeline.On("Run", mock.Anything, mock.Anything).Return(nil, context.Canceled)
	f.docRepo.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
		return d.Status == domain.DocumentStatusFailed && strings.Contains(d.LastError, "aborted")
	})).Return(nil)

	_, err := f.svc.Extract(context.Background(), doc, domain.RequestContext{})

	assert.ErrorIs(t, err, context.Canceled)
	f.resultRepo.AssertNotCalled(t, "SaveResult", mock.Anything, mock.Anything)
	f.docRepo.AssertExpectations(t)
}

func TestProcessQueued_RequeuesTransientFailure(t *testing.T) {
	f := newFixture(0)
	doc := &domain.Document{ID: uuid.New(), Text: "quote", MIMEType: "text/plain", Status: domain.DocumentStatusProcessing, Attempts: 1}

	f.pipeline.On("Run", mock.Anything, mock.Anything).Return(failedResult(domain.ErrorKindProviderError), nil)
	f.resultRepo.On("SaveResult", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

	f.svc.ProcessQueued(context.Background(), doc, 3)

	assert.Equal(t, domain.DocumentStatusQueued, doc.Status)
	f.docRepo.AssertNumberOfCalls(t, "UpdateStatus", 2)
}

func TestProcessQueued_StopsAtMaxAttempts(t *testing.T) {
	f := newFixture(0)
	doc := &domain.Document{ID: uuid.New(), Text: "quote", MIMEType: "text/plain", Attempts: 3}

	f.pipeline.On("Run", mock.Anything, mock.Anything).Return(failedResult(domain.ErrorKindTimeout), nil)
	f.resultRepo.On("SaveResult", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

	f.svc.ProcessQueued(context.Background(), doc, 3)

	assert.Equal(t, domain.DocumentStatusFailed, doc.Status)
	f.docRepo.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

func TestProcessQueued_DocumentProblemsAreNotRetried(t *testing.T) {
	f := newFixture(0)
	doc := &domain.Document{ID: uuid.New(), Text: "quote", MIMEType: "text/plain", Attempts: 1}

	f.pipeline.On("Run", mock.Anything, mock.Anything).Return(failedResult(domain.ErrorKindSchemaViolation), nil)
	f.resultRepo.On("SaveResult", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

	f.svc.ProcessQueued(context.Background(), doc, 3)

	assert.Equal(t, domain.DocumentStatusFailed, doc.Status)
}

func TestRetry_DownloadsStoredContent(t *testing.T) {
	f := newFixture(0)
	doc := &domain.Document{
		ID: uuid.New(), Filename: "scan.png", MIMEType: "image/png", Channel: domain.ChannelImage,
		StorageBucket: "freightdesk-documents", StorageKey: "documents/x/scan.png",
		Status: domain.DocumentStatusFailed, Attempts: 2, DefaultCountry: "BE",
	}

	f.docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	f.storage.On("Download", mock.Anything, "freightdesk-documents", "documents/x/scan.png").Return(pngBytes, nil)
	f.pipeline.On("Run", mock.Anything, mock.MatchedBy(func(raw *domain.RawDocument) bool {
		return string(raw.Content) == string(pngBytes) && raw.MIMEType == "image/png"
	})).Return(successResult(), nil)
	f.resultRepo.On("SaveResult", mock.Anything, mock.Anything).Return(nil)
	f.dispatcher.On("Dispatch", mock.Anything, doc.ID, mock.Anything).Return([]domain.DispatchResult{})
	f.resultRepo.On("SaveDispatchResults", mock.Anything, doc.ID, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

	out, err := f.svc.Retry(context.Background(), doc.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Document.Attempts)
	assert.Equal(t, domain.DocumentStatusCompleted, out.Document.Status)
	assert.Empty(t, out.Document.LastError)
	f.storage.AssertExpectations(t)
}

func TestRetry_NotFound(t *testing.T) {
	f := newFixture(0)
	id := uuid.New()
	f.docRepo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	_, err := f.svc.Retry(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_ToleratesMissingResult(t *testing.T) {
	f := newFixture(0)
	doc := &domain.Document{ID: uuid.New(), Status: domain.DocumentStatusQueued}

	f.docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	f.resultRepo.On("LatestResult", mock.Anything, doc.ID).Return(nil, domain.ErrNotFound)
	f.resultRepo.On("GetPayload", mock.Anything, doc.ID).Return(nil, domain.ErrNotFound)

	view, err := f.svc.Get(context.Background(), doc.ID)
	require.NoError(t, err)

	assert.Equal(t, doc, view.Document)
	assert.Nil(t, view.Result)
	assert.Nil(t, view.Payload)
}

func TestSubmit_CreateFailureRemovesUpload(t *testing.T) {
	f := newFixture(0)
	var key string
	f.storage.On("Upload", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { key = args.Get(1).(port.UploadInput).Key }).
		Return(&port.UploadOutput{}, nil)
	f.docRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
	f.storage.On("Delete", mock.Anything, "freightdesk-documents", mock.AnythingOfType("string")).Return(nil)

	_, err := f.svc.Submit(context.Background(), service.SubmitInput{Filename: "scan.png", Content: pngBytes})

	assert.Error(t, err)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "freightdesk-documents", key)
	f.pipeline.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestGet_PresignsStoredOriginal(t *testing.T) {
	f := newFixture(0)
	doc := &domain.Document{ID: uuid.New(), StorageBucket: "freightdesk-documents", StorageKey: "documents/x/scan.png"}
	payload := &domain.StoredPayload{DocumentID: doc.ID}

	f.docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	f.storage.On("GetPresignedURL", mock.Anything, "freightdesk-documents", "documents/x/scan.png", int64(900)).
		Return("https://s3.example.com/documents/x/scan.png?sig=abc", nil)
	f.resultRepo.On("LatestResult", mock.Anything, doc.ID).Return(nil, domain.ErrNotFound)
	f.resultRepo.On("GetPayload", mock.Anything, doc.ID).Return(payload, nil)

	view, err := f.svc.Get(context.Background(), doc.ID)
	require.NoError(t, err)

	assert.Equal(t, "https://s3.example.com/documents/x/scan.png?sig=abc", view.SourceURL)
	assert.Equal(t, payload, view.Payload)
}

func TestSubmit_EmailBodyDecoding(t *testing.T) {
	tests := []struct {
		name    string
		eml     string
		want    []string
		notWant []string
	}{
		{
			name: "multipart alternative with quoted-printable plain part",
			eml: "From: Anna <anna@transport.be>\r\n" +
				"Subject: Offerte heftruck\r\n" +
				"MIME-Version: 1.0\r\n" +
				"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
				"\r\n" +
				"--b1\r\n" +
				"Content-Type: text/plain; charset=utf-8\r\n" +
				"Content-Transfer-Encoding: quoted-printable\r\n" +
				"\r\n" +
				"Graag een prijs, gewicht 3.500 kg, van Antwerpen naar Tema=\r\n" +
				" per RoRo. L=C3=A4nge 3,9 m, formule a=3Db\r\n" +
				"--b1\r\n" +
				"Content-Type: text/html; charset=utf-8\r\n" +
				"\r\n" +
				"<p>html version</p>\r\n" +
				"--b1--\r\n",
			want:    []string{"From: Anna <anna@transport.be>", "van Antwerpen naar Tema per RoRo", "Länge 3,9 m", "a=b"},
			notWant: []string{"--b1", "=C3", "=3D", "<p>", "html version"},
		},
		{
			name: "html only with base64 latin-1",
			eml: "From: j@spedition.de\r\n" +
				"Subject: Anfrage\r\n" +
				"MIME-Version: 1.0\r\n" +
				"Content-Type: multipart/mixed; boundary=outer\r\n" +
				"\r\n" +
				"--outer\r\n" +
				"Content-Type: text/html; charset=iso-8859-1\r\n" +
				"Content-Transfer-Encoding: base64\r\n" +
				"\r\n" +
				"Qml0dGUgQW5nZWJvdCwgSPZoZSAzLDEgbSwgdm9uIEhhbWJ1cmcgbmFjaCBUZW1h\r\n" +
				"--outer\r\n" +
				"Content-Type: application/pdf\r\n" +
				"Content-Disposition: attachment; filename=\"specs.pdf\"\r\n" +
				"Content-Transfer-Encoding: base64\r\n" +
				"\r\n" +
				"JVBERi0xLjQK\r\n" +
				"--outer--\r\n",
			want:    []string{"Bitte Angebot, Höhe 3,1 m, von Hamburg nach Tema"},
			notWant: []string{"Qml0dGUg", "JVBERi0x", "--outer"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(0)
			var text string
			f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
			f.docRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			f.pipeline.On("Run", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) { text = args.Get(1).(*domain.RawDocument).Text }).
				Return(failedResult(domain.ErrorKindStrategyFailure), nil)
			f.resultRepo.On("SaveResult", mock.Anything, mock.Anything).Return(nil)
			f.docRepo.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

			_, err := f.svc.Submit(context.Background(), service.SubmitInput{Filename: "request.eml", Content: []byte(tt.eml)})
			require.NoError(t, err)

			for _, s := range tt.want {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestSubmit_StorageKeyForUnnamedUpload(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		wantSuffix  string
	}{
		{"jpeg uses canonical extension", "", "image/jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), "/original.jpg"},
		{"png", "", "image/png", pngBytes, "/original.png"},
		{"named upload keeps its name", "site/photo.png", "", pngBytes, "/site_photo.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				f := newFixture(0)
				f.storage.AcceptUploads("freightdesk-documents")
				f.docRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

				_, err := f.svc.Submit(context.Background(), service.SubmitInput{
					Filename: tt.filename, ContentType: tt.contentType, Content: tt.content, Async: true,
				})
				require.NoError(t, err)

				keys := f.storage.UploadedKeys()
				require.Len(t, keys, 1)
				assert.True(t, strings.HasSuffix(keys[0], tt.wantSuffix), keys[0])
			}
		})
	}
}
