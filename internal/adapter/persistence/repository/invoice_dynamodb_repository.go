package repository

import (
	"context"
	"errors"
	"time"

	"fieldserve/internal/domain/entities"
	"fieldserve/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultInvoicesTableName = "invoices"
	invoicesJobIDIndex       = "job_id-index"
)

type invoiceLineItem struct {
	Description string  `dynamodbav:"description"`
	Quantity    float64 `dynamodbav:"quantity"`
	UnitPrice   float64 `dynamodbav:"unit_price"`
	TaxRate     float64 `dynamodbav:"tax_rate"`
	TaxAmount   float64 `dynamodbav:"tax_amount"`
	LineTotal   float64 `dynamodbav:"line_total"`
	SortOrder   int     `dynamodbav:"sort_order"`
}

type invoiceItem struct {
	ID              string  `dynamodbav:"id"`
	Number          string  `dynamodbav:"number"`
	JobID           string  `dynamodbav:"job_id"`
	Kind            string  `dynamodbav:"kind"`
	ParentInvoiceID string  `dynamodbav:"parent_invoice_id,omitempty"`
	Status          string  `dynamodbav:"status"`
	Subtotal        float64 `dynamodbav:"subtotal"`
	TaxAmount       float64 `dynamodbav:"tax_amount"`
	TotalAmount     float64 `dynamodbav:"total_amount"`
	DepositApplied  float64 `dynamodbav:"deposit_applied"`
	ProgressBasis   string  `dynamodbav:"progress_basis,omitempty"`
	ProgressPercent float64 `dynamodbav:"progress_percent,omitempty"`
	ProgressAmount  float64 `dynamodbav:"progress_amount,omitempty"`
	ComputedBalance float64 `dynamodbav:"computed_balance,omitempty"`

	Lines []invoiceLineItem `dynamodbav:"lines,omitempty"`

	PaymentTerms string `dynamodbav:"payment_terms,omitempty"`
	IssuedAt     string `dynamodbav:"issued_at"`
	DueDate      string `dynamodbav:"due_date,omitempty"`
	PaidAt       string `dynamodbav:"paid_at,omitempty"`
	CreatedAt    string `dynamodbav:"created_at"`
	UpdatedAt    string `dynamodbav:"updated_at"`
}

// InvoiceDynamoRepository persists Invoice entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: job_id-index (PK: job_id)

type InvoiceDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IInvoiceRepository = (*InvoiceDynamoRepository)(nil)

func NewInvoiceDynamoRepository(ddb *dynamodb.Client) *InvoiceDynamoRepository {
	return &InvoiceDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("INVOICES_TABLE", defaultInvoicesTableName),
	}
}

func (r *InvoiceDynamoRepository) Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error) {
	it := toInvoiceItem(inv)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Invoice{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceDynamoRepository) GetByID(ctx context.Context, id string) (entities.Invoice, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Invoice{}, err
	}
	if len(out.Item) == 0 {
		return entities.Invoice{}, nil
	}

	var it invoiceItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Invoice{}, err
	}
	return fromInvoiceItem(it), nil
}

func (r *InvoiceDynamoRepository) ListByJobID(ctx context.Context, jobID string) ([]entities.Invoice, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(invoicesJobIDIndex),
		KeyConditionExpression: aws.String("job_id = :jid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":jid": &types.AttributeValueMemberS{Value: jobID},
		},
	})
	if err != nil {
		return nil, err
	}

	items := make([]entities.Invoice, 0, len(out.Items))
	for _, raw := range out.Items {
		var it invoiceItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		items = append(items, fromInvoiceItem(it))
	}
	return items, nil
}

func (r *InvoiceDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.InvoiceStatus, paidAt *time.Time) (entities.Invoice, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	expr := "SET #status = :status, #updated_at = :updated_at"
	values := map[string]types.AttributeValue{
		":status":     &types.AttributeValueMemberS{Value: string(status)},
		":updated_at": &types.AttributeValueMemberS{Value: now},
	}
	names := map[string]string{
		"#id":         "id",
		"#status":     "status",
		"#updated_at": "updated_at",
	}
	if paidAt != nil {
		expr += ", #paid_at = :paid_at"
		names["#paid_at"] = "paid_at"
		values[":paid_at"] = &types.AttributeValueMemberS{Value: paidAt.UTC().Format(time.RFC3339Nano)}
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  names,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Invoice{}, nil
		}
		return entities.Invoice{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Invoice{}, nil
	}
	var it invoiceItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Invoice{}, err
	}
	return fromInvoiceItem(it), nil
}

func toInvoiceItem(inv entities.Invoice) invoiceItem {
	lines := make([]invoiceLineItem, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, invoiceLineItem{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			TaxAmount:   l.TaxAmount,
			LineTotal:   l.LineTotal,
			SortOrder:   l.SortOrder,
		})
	}
	return invoiceItem{
		ID:              inv.ID,
		Number:          inv.Number,
		JobID:           inv.JobID,
		Kind:            string(inv.Kind),
		ParentInvoiceID: strFromPtr(inv.ParentInvoiceID),
		Status:          string(inv.Status),
		Subtotal:        inv.Subtotal,
		TaxAmount:       inv.TaxAmount,
		TotalAmount:     inv.TotalAmount,
		DepositApplied:  inv.DepositApplied,
		ProgressBasis:   string(inv.ProgressBasis),
		ProgressPercent: inv.ProgressPercent,
		ProgressAmount:  inv.ProgressAmount,
		ComputedBalance: inv.ComputedBalance,
		Lines:           lines,
		PaymentTerms:    inv.PaymentTerms,
		IssuedAt:        inv.IssuedAt.UTC().Format(time.RFC3339Nano),
		DueDate:         inv.DueDate,
		PaidAt:          timeToString(inv.PaidAt),
		CreatedAt:       inv.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       inv.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromInvoiceItem(it invoiceItem) entities.Invoice {
	lines := make([]entities.InvoiceLineItem, 0, len(it.Lines))
	for _, l := range it.Lines {
		lines = append(lines, entities.InvoiceLineItem{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			TaxAmount:   l.TaxAmount,
			LineTotal:   l.LineTotal,
			SortOrder:   l.SortOrder,
		})
	}
	issuedAt, _ := time.Parse(time.RFC3339Nano, it.IssuedAt)
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return entities.Invoice{
		ID:              it.ID,
		Number:          it.Number,
		JobID:           it.JobID,
		Kind:            entities.InvoiceKind(it.Kind),
		ParentInvoiceID: ptrFromStr(it.ParentInvoiceID),
		Status:          entities.InvoiceStatus(it.Status),
		Subtotal:        it.Subtotal,
		TaxAmount:       it.TaxAmount,
		TotalAmount:     it.TotalAmount,
		DepositApplied:  it.DepositApplied,
		ProgressBasis:   entities.ProgressBasis(it.ProgressBasis),
		ProgressPercent: it.ProgressPercent,
		ProgressAmount:  it.ProgressAmount,
		ComputedBalance: it.ComputedBalance,
		Lines:           lines,
		PaymentTerms:    it.PaymentTerms,
		IssuedAt:        issuedAt,
		DueDate:         it.DueDate,
		PaidAt:          stringToTime(it.PaidAt),
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}
