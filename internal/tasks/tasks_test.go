package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m-zohaibk/AQUABILL/internal/config"
	"github.com/m-zohaibk/AQUABILL/internal/models"
	"github.com/m-zohaibk/AQUABILL/internal/services"
	"github.com/m-zohaibk/AQUABILL/internal/tasks"
	"github.com/m-zohaibk/AQUABILL/internal/utils"
)

// --- Mocks ---

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	args := m.Called(ctx, to, subject, rawMessage)
	return args.Error(0)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Create(ctx context.Context, name, contact string) (*models.Customer, error) {
	args := m.Called(ctx, name, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerService) Update(ctx context.Context, customerID utils.SixID, name, contact string) (*models.Customer, error) {
	args := m.Called(ctx, customerID, name, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerService) FindByID(ctx context.Context, customerID utils.SixID) (*models.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerService) FindAll(ctx context.Context) ([]models.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockCustomerService) Delete(ctx context.Context, customerID utils.SixID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, in services.InvoiceInput) (*models.Invoice, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Update(ctx context.Context, invoiceID utils.SixID, in services.InvoiceInput) (*models.Invoice, error) {
	args := m.Called(ctx, invoiceID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) FindByID(ctx context.Context, invoiceID utils.SixID) (*models.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) FindByCustomer(ctx context.Context, customerID utils.SixID) ([]models.Invoice, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) FindAll(ctx context.Context) ([]models.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, invoiceID utils.SixID) error {
	args := m.Called(ctx, invoiceID)
	return args.Error(0)
}

func (m *MockInvoiceService) DeleteByCustomer(ctx context.Context, customerID utils.SixID) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context) (models.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Settings), args.Error(1)
}

func (m *MockSettingsService) Update(ctx context.Context, settings models.Settings) (models.Settings, error) {
	args := m.Called(ctx, settings)
	return args.Get(0).(models.Settings), args.Error(1)
}

func (m *MockSettingsService) Import(ctx context.Context, raw []byte) (models.Settings, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(models.Settings), args.Error(1)
}

func (m *MockSettingsService) Export(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockArchiveStorage struct {
	mock.Mock
}

func (m *MockArchiveStorage) UploadStatement(ctx context.Context, customerID utils.SixID, pdf []byte) (string, error) {
	args := m.Called(ctx, customerID, pdf)
	return args.String(0), args.Error(1)
}

// --- Tests ---

func TestHandleCustomerPurgeTask_Success(t *testing.T) {
	mockInvoices := new(MockInvoiceService)
	p := tasks.NewTaskProcessor(&config.Config{}, nil, nil, nil, mockInvoices, nil)

	customerID := utils.NewSixID()
	task, err := tasks.NewCustomerPurgeTask(customerID)
	assert.NoError(t, err)

	mockInvoices.On("DeleteByCustomer", mock.Anything, customerID).Return(int64(3), nil)

	err = p.HandleCustomerPurgeTask(context.Background(), task)

	assert.NoError(t, err)
	mockInvoices.AssertExpectations(t)
}

func TestHandleCustomerPurgeTask_BadPayload(t *testing.T) {
	p := tasks.NewTaskProcessor(&config.Config{}, nil, nil, nil, new(MockInvoiceService), nil)

	task := asynq.NewTask(tasks.TypeCustomerPurge, []byte("not json"))
	err := p.HandleCustomerPurgeTask(context.Background(), task)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry), "malformed payload should not be retried")
}

func TestHandlePaymentReminderTask_Success(t *testing.T) {
	mockSender := new(MockEmailSender)
	mockCustomers := new(MockCustomerService)
	mockInvoices := new(MockInvoiceService)
	mockSettings := new(MockSettingsService)
	cfg := &config.Config{AppName: "AquaBill", SmtpFromAddress: "billing@aquabill.example.com"}

	p := tasks.NewTaskProcessor(cfg, mockSender, nil, mockCustomers, mockInvoices, mockSettings)

	customerID := utils.NewSixID()
	customer := &models.Customer{
		Base:    models.Base{ID: customerID},
		Name:    "Al-Falah Colony",
		Contact: "billing@alfalah.example.com",
	}
	invoices := []models.Invoice{
		{AmountPending: 500},
		{AmountPending: -200}, // overpayment must not offset dues
		{AmountPending: 300},
	}

	mockCustomers.On("FindByID", mock.Anything, customerID).Return(customer, nil)
	mockInvoices.On("FindByCustomer", mock.Anything, customerID).Return(invoices, nil)
	mockSettings.On("Get", mock.Anything).Return(models.Settings{BusinessName: "Blue Drop Water Supply"}, nil)

	mockSender.On("Send",
		mock.Anything,
		[]string{customer.Contact},
		"Payment reminder from Blue Drop Water Supply",
		mock.MatchedBy(func(rawMsg []byte) bool {
			msg := string(rawMsg)
			assert.Contains(t, msg, "800.00", "reminder should total only positive pending amounts")
			assert.Contains(t, msg, "To: billing@alfalah.example.com")
			return true
		}),
	).Return(nil)

	task, err := tasks.NewPaymentReminderTask(customerID)
	assert.NoError(t, err)

	err = p.HandlePaymentReminderTask(context.Background(), task)

	assert.NoError(t, err)
	mockSender.AssertExpectations(t)
}

func TestHandlePaymentReminderTask_NoPendingDues(t *testing.T) {
	mockSender := new(MockEmailSender)
	mockCustomers := new(MockCustomerService)
	mockInvoices := new(MockInvoiceService)
	mockSettings := new(MockSettingsService)

	p := tasks.NewTaskProcessor(&config.Config{}, mockSender, nil, mockCustomers, mockInvoices, mockSettings)

	customerID := utils.NewSixID()
	mockCustomers.On("FindByID", mock.Anything, customerID).Return(&models.Customer{
		Base: models.Base{ID: customerID}, Name: "Paid Up", Contact: "paid@example.com",
	}, nil)
	mockInvoices.On("FindByCustomer", mock.Anything, customerID).Return([]models.Invoice{
		{AmountPending: 0},
		{AmountPending: -150},
	}, nil)

	task, _ := tasks.NewPaymentReminderTask(customerID)
	err := p.HandlePaymentReminderTask(context.Background(), task)

	assert.NoError(t, err)
	mockSender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlePaymentReminderTask_NonEmailContact(t *testing.T) {
	mockSender := new(MockEmailSender)
	mockCustomers := new(MockCustomerService)
	mockInvoices := new(MockInvoiceService)
	mockSettings := new(MockSettingsService)

	p := tasks.NewTaskProcessor(&config.Config{}, mockSender, nil, mockCustomers, mockInvoices, mockSettings)

	customerID := utils.NewSixID()
	mockCustomers.On("FindByID", mock.Anything, customerID).Return(&models.Customer{
		Base: models.Base{ID: customerID}, Name: "Phone Only", Contact: "0300-1234567",
	}, nil)
	mockInvoices.On("FindByCustomer", mock.Anything, customerID).Return([]models.Invoice{
		{AmountPending: 450},
	}, nil)

	task, _ := tasks.NewPaymentReminderTask(customerID)
	err := p.HandlePaymentReminderTask(context.Background(), task)

	assert.NoError(t, err)
	mockSender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleStatementArchiveTask_Success(t *testing.T) {
	mockCustomers := new(MockCustomerService)
	mockInvoices := new(MockInvoiceService)
	mockSettings := new(MockSettingsService)
	mockArchive := new(MockArchiveStorage)

	p := tasks.NewTaskProcessor(&config.Config{}, nil, mockArchive, mockCustomers, mockInvoices, mockSettings)

	customerID := utils.NewSixID()
	mockCustomers.On("FindByID", mock.Anything, customerID).Return(&models.Customer{
		Base: models.Base{ID: customerID}, Name: "Al-Falah Colony",
	}, nil)
	mockInvoices.On("FindByCustomer", mock.Anything, customerID).Return([]models.Invoice{
		{Base: models.NewBase(), Date: "2024-03-01", StartTime: "08:00", EndTime: "09:00",
			RatePerMinute: 16.666, DurationMinutes: 60, TotalCost: 1000, AmountPending: 1000},
	}, nil)
	mockSettings.On("Get", mock.Anything).Return(models.Settings{
		RatePerMinute: 16.666, BusinessName: "Blue Drop Water Supply",
	}, nil)

	mockArchive.On("UploadStatement", mock.Anything, customerID, mock.MatchedBy(func(pdf []byte) bool {
		return len(pdf) > 4 && string(pdf[:4]) == "%PDF"
	})).Return("statements/abc/2024-03-01_xyz.pdf", nil)

	task, err := tasks.NewStatementArchiveTask(customerID)
	assert.NoError(t, err)

	err = p.HandleStatementArchiveTask(context.Background(), task)

	assert.NoError(t, err)
	mockArchive.AssertExpectations(t)
}

func TestTaskPayloadRoundtrip(t *testing.T) {
	customerID := utils.NewSixID()
	task, err := tasks.NewCustomerPurgeTask(customerID)
	assert.NoError(t, err)
	assert.Equal(t, tasks.TypeCustomerPurge, task.Type())

	var payload tasks.CustomerPurgeTaskPayload
	assert.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, customerID.String(), payload.CustomerID)
}
