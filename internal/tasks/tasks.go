package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/m-zohaibk/AQUABILL/internal/config"
	"github.com/m-zohaibk/AQUABILL/internal/email"
	"github.com/m-zohaibk/AQUABILL/internal/export"
	"github.com/m-zohaibk/AQUABILL/internal/services"
	"github.com/m-zohaibk/AQUABILL/internal/storage"
	"github.com/m-zohaibk/AQUABILL/internal/utils"
)

// TaskType defines the type of a background task.
const (
	TypeCustomerPurge    = "customer:purge"
	TypePaymentReminder  = "billing:remind"
	TypeStatementArchive = "statement:archive"
)

// CustomerPurgeTaskPayload carries the customer whose invoices must be
// removed after the customer document itself has been deleted.
type CustomerPurgeTaskPayload struct {
	CustomerID string `json:"customer_id"`
}

// PaymentReminderTaskPayload identifies the customer to remind.
type PaymentReminderTaskPayload struct {
	CustomerID string `json:"customer_id"`
}

// StatementArchiveTaskPayload identifies the customer whose statement
// should be rendered and archived.
type StatementArchiveTaskPayload struct {
	CustomerID string `json:"customer_id"`
}

// NewCustomerPurgeTask creates a task to delete all invoices of a customer.
func NewCustomerPurgeTask(customerID utils.SixID) (*asynq.Task, error) {
	payload, err := json.Marshal(CustomerPurgeTaskPayload{CustomerID: customerID.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCustomerPurge, payload, asynq.Queue("critical"), asynq.MaxRetry(10)), nil
}

// NewPaymentReminderTask creates a task to email a customer about pending dues.
func NewPaymentReminderTask(customerID utils.SixID) (*asynq.Task, error) {
	payload, err := json.Marshal(PaymentReminderTaskPayload{CustomerID: customerID.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePaymentReminder, payload, asynq.Queue("default")), nil
}

// NewStatementArchiveTask creates a task to render a customer statement PDF
// and upload it to archive storage.
func NewStatementArchiveTask(customerID utils.SixID) (*asynq.Task, error) {
	payload, err := json.Marshal(StatementArchiveTaskPayload{CustomerID: customerID.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeStatementArchive, payload, asynq.Queue("low")), nil
}

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg             *config.Config
	emailSender     email.Sender
	archiveStorage  storage.IArchiveStorage
	customerService services.ICustomerService
	invoiceService  services.IInvoiceService
	settingsService services.ISettingsService
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	archiveStorage storage.IArchiveStorage,
	customerService services.ICustomerService,
	invoiceService services.IInvoiceService,
	settingsService services.ISettingsService,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:             cfg,
		emailSender:     emailSender,
		archiveStorage:  archiveStorage,
		customerService: customerService,
		invoiceService:  invoiceService,
		settingsService: settingsService,
	}
}

// SetupServer configures an Asynq server and its handler mux.
// The caller is responsible for running the returned server.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				fmt.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v\n", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCustomerPurge, processor.HandleCustomerPurgeTask)
	mux.HandleFunc(TypePaymentReminder, processor.HandlePaymentReminderTask)
	mux.HandleFunc(TypeStatementArchive, processor.HandleStatementArchiveTask)

	return srv, mux
}

// --- Task Handlers ---

// HandleCustomerPurgeTask removes all invoices belonging to a deleted
// customer. The deletion is idempotent, so retries are safe.
func (p *TaskProcessor) HandleCustomerPurgeTask(ctx context.Context, t *asynq.Task) error {
	var payload CustomerPurgeTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal customer purge payload: %v: %w", err, asynq.SkipRetry)
	}

	customerID, err := utils.ParseSixID(payload.CustomerID)
	if err != nil {
		log.Printf("Invalid CustomerID in purge task payload: %s", payload.CustomerID)
		return fmt.Errorf("invalid customer ID in payload: %w", asynq.SkipRetry)
	}

	deleted, err := p.invoiceService.DeleteByCustomer(ctx, customerID)
	if err != nil {
		log.Printf("Error purging invoices for customer %s: %v", payload.CustomerID, err)
		return err
	}

	log.Printf("Customer purge finished for %s. Deleted %d invoices.", payload.CustomerID, deleted)
	return nil
}

// HandlePaymentReminderTask emails a customer the total of their unpaid
// invoices. Customers without an email-looking contact are skipped.
func (p *TaskProcessor) HandlePaymentReminderTask(ctx context.Context, t *asynq.Task) error {
	var payload PaymentReminderTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payment reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	customerID, err := utils.ParseSixID(payload.CustomerID)
	if err != nil {
		return fmt.Errorf("invalid customer ID in payload: %w", asynq.SkipRetry)
	}

	customer, err := p.customerService.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Printf("Customer %s not found for reminder, likely deleted. Skipping.", payload.CustomerID)
			return fmt.Errorf("customer not found: %w", asynq.SkipRetry)
		}
		return err
	}

	invoices, err := p.invoiceService.FindByCustomer(ctx, customerID)
	if err != nil {
		return err
	}

	var totalPending float64
	for _, inv := range invoices {
		if inv.AmountPending > 0 {
			totalPending += inv.AmountPending
		}
	}

	if totalPending == 0 {
		log.Printf("Customer %s has no pending dues. No reminder sent.", payload.CustomerID)
		return nil
	}

	if !strings.Contains(customer.Contact, "@") {
		log.Printf("Customer %s contact %q is not an email address. Skipping reminder.", payload.CustomerID, customer.Contact)
		return nil
	}

	settings, err := p.settingsService.Get(ctx)
	if err != nil {
		return err
	}

	businessName := settings.BusinessName
	if businessName == "" {
		businessName = p.cfg.AppName
	}
	subject := fmt.Sprintf("Payment reminder from %s", businessName)
	body := fmt.Sprintf("Dear %s,\r\n\r\nOur records show a pending balance of %.2f for water deliveries.\r\nPlease arrange payment at your earliest convenience.\r\n\r\nRegards,\r\n%s\r\n%s\r\n",
		customer.Name, totalPending, businessName, settings.BusinessContact)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", customer.Contact))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", p.cfg.SmtpFromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	if err := p.emailSender.Send(ctx, []string{customer.Contact}, subject, []byte(sb.String())); err != nil {
		log.Printf("Reminder email to customer %s failed: %v", payload.CustomerID, err)
		return err
	}

	log.Printf("Payment reminder sent to customer %s (pending %.2f).", payload.CustomerID, totalPending)
	return nil
}

// HandleStatementArchiveTask renders a customer's full statement as a PDF
// and uploads it to archive storage.
func (p *TaskProcessor) HandleStatementArchiveTask(ctx context.Context, t *asynq.Task) error {
	var payload StatementArchiveTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal statement archive payload: %v: %w", err, asynq.SkipRetry)
	}

	customerID, err := utils.ParseSixID(payload.CustomerID)
	if err != nil {
		return fmt.Errorf("invalid customer ID in payload: %w", asynq.SkipRetry)
	}

	customer, err := p.customerService.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("customer not found: %w", asynq.SkipRetry)
		}
		return err
	}

	invoices, err := p.invoiceService.FindByCustomer(ctx, customerID)
	if err != nil {
		return err
	}

	settings, err := p.settingsService.Get(ctx)
	if err != nil {
		return err
	}

	pdf, err := export.StatementPDF(settings, *customer, invoices)
	if err != nil {
		log.Printf("Error rendering statement PDF for customer %s: %v", payload.CustomerID, err)
		return fmt.Errorf("failed to render statement: %w", asynq.SkipRetry)
	}

	objectKey, err := p.archiveStorage.UploadStatement(ctx, customerID, pdf)
	if err != nil {
		log.Printf("Error archiving statement for customer %s: %v", payload.CustomerID, err)
		return err
	}

	log.Printf("Statement archived for customer %s at %s.", payload.CustomerID, objectKey)
	return nil
}
