package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fieldserve/internal/domain/entities"
	"fieldserve/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultJobsTableName = "jobs"

type jobLineItem struct {
	Description string  `dynamodbav:"description"`
	Quantity    float64 `dynamodbav:"quantity"`
	UnitRate    float64 `dynamodbav:"unit_rate"`
	ItemType    string  `dynamodbav:"item_type"`
}

type jobItem struct {
	ID               string  `dynamodbav:"id"`
	CustomerID       string  `dynamodbav:"customer_id"`
	AssignedWorkerID string  `dynamodbav:"assigned_worker_id,omitempty"`
	Status           string  `dynamodbav:"status"`
	Title            string  `dynamodbav:"title,omitempty"`
	ScheduledStart   string  `dynamodbav:"scheduled_start,omitempty"`
	ScheduledEnd     string  `dynamodbav:"scheduled_end,omitempty"`
	PricingModel     string  `dynamodbav:"pricing_model"`
	FlatRateAmount   float64 `dynamodbav:"flat_rate_amount,omitempty"`
	UnitCount        float64 `dynamodbav:"unit_count,omitempty"`
	UnitPrice        float64 `dynamodbav:"unit_price,omitempty"`
	Percentage       float64 `dynamodbav:"percentage,omitempty"`
	PercentageBase   float64 `dynamodbav:"percentage_base_amount,omitempty"`
	RecurringIntervl string  `dynamodbav:"recurring_interval,omitempty"`
	RecurringRate    float64 `dynamodbav:"recurring_rate,omitempty"`
	MilestoneBase    float64 `dynamodbav:"milestone_base_amount,omitempty"`
	TaxRate          float64 `dynamodbav:"tax_rate"`

	LineItems []jobLineItem `dynamodbav:"line_items,omitempty"`

	CancellationReason      string `dynamodbav:"cancellation_reason,omitempty"`
	CancellationInitiatedBy string `dynamodbav:"cancellation_initiated_by,omitempty"`
	CancellationNotes       string `dynamodbav:"cancellation_notes,omitempty"`
	CancelledAt             string `dynamodbav:"cancelled_at,omitempty"`
	OnHoldReason            string `dynamodbav:"on_hold_reason,omitempty"`
	OnHoldNotes             string `dynamodbav:"on_hold_notes,omitempty"`
	EstimatedResumeDate     string `dynamodbav:"estimated_resume_date,omitempty"`
	OnHoldAt                string `dynamodbav:"on_hold_at,omitempty"`
	ReschedulingReason      string `dynamodbav:"rescheduling_reason,omitempty"`
	ReschedulingNotes       string `dynamodbav:"rescheduling_notes,omitempty"`
	ReschedulingRequestedAt string `dynamodbav:"rescheduling_requested_at,omitempty"`
	WorkPerformed           string `dynamodbav:"work_performed,omitempty"`
	MaterialsUsed           string `dynamodbav:"materials_used,omitempty"`
	CompletedAt             string `dynamodbav:"completed_at,omitempty"`
	StartedAt               string `dynamodbav:"started_at,omitempty"`
	ResolutionNotes         string `dynamodbav:"resolution_notes,omitempty"`

	InvoiceDate  string `dynamodbav:"invoice_date,omitempty"`
	DueDate      string `dynamodbav:"due_date,omitempty"`
	PaymentTerms string `dynamodbav:"payment_terms,omitempty"`
	InvoiceID    string `dynamodbav:"invoice_id,omitempty"`

	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// JobDynamoRepository persists Job entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// The status attribute doubles as the optimistic-concurrency token:
// UpdateStatus writes under a `#status = :expected` condition so a stale
// commit can never overwrite a concurrent transition.

type JobDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IJobRepository = (*JobDynamoRepository)(nil)

func NewJobDynamoRepository(ddb *dynamodb.Client) *JobDynamoRepository {
	return &JobDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("JOBS_TABLE", defaultJobsTableName),
	}
}

func (r *JobDynamoRepository) Create(ctx context.Context, j entities.Job) (entities.Job, error) {
	it := toJobItem(j)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Job{}, err
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
		return entities.Job{}, err
	}
	return j, nil
}

func (r *JobDynamoRepository) GetByID(ctx context.Context, id string) (entities.Job, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Job{}, err
	}
	if len(out.Item) == 0 {
		return entities.Job{}, nil
	}

	var it jobItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Job{}, err
	}
	return fromJobItem(it), nil
}

func (r *JobDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.JobStatus, fields map[string]any, expectedPrior entities.JobStatus) (entities.Job, error) {
	names := map[string]string{
		"#id":         "id",
		"#status":     "status",
		"#updated_at": "updated_at",
	}
	values := map[string]types.AttributeValue{
		":status":     &types.AttributeValueMemberS{Value: string(status)},
		":expected":   &types.AttributeValueMemberS{Value: string(expectedPrior)},
		":updated_at": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
	}
	expr, err := buildFieldExpression([]string{"#status = :status", "#updated_at = :updated_at"}, fields, names, values)
	if err != nil {
		return entities.Job{}, err
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:       aws.String("attribute_exists(#id) AND #status = :expected"),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  names,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Job{}, nil
		}
		return entities.Job{}, err
	}
	return r.unmarshalJob(out.Attributes)
}

func (r *JobDynamoRepository) Patch(ctx context.Context, id string, fields map[string]any) (entities.Job, error) {
	names := map[string]string{
		"#id":         "id",
		"#updated_at": "updated_at",
	}
	values := map[string]types.AttributeValue{
		":updated_at": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
	}
	expr, err := buildFieldExpression([]string{"#updated_at = :updated_at"}, fields, names, values)
	if err != nil {
		return entities.Job{}, err
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
			return entities.Job{}, nil
		}
		return entities.Job{}, err
	}
	return r.unmarshalJob(out.Attributes)
}

func (r *JobDynamoRepository) unmarshalJob(attrs map[string]types.AttributeValue) (entities.Job, error) {
	if len(attrs) == 0 {
		return entities.Job{}, nil
	}
	var it jobItem
	if err := attributevalue.UnmarshalMap(attrs, &it); err != nil {
		return entities.Job{}, err
	}
	return fromJobItem(it), nil
}

// buildFieldExpression appends field assignments to the base SET clauses,
// plus a REMOVE clause for nil-valued fields (clearing the schedule slot).
// Field keys are processed in sorted order so expressions are deterministic.
func buildFieldExpression(baseSets []string, fields map[string]any, names map[string]string, values map[string]types.AttributeValue) (string, error) {
	sets := baseSets
	var removes []string

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, key := range keys {
		namePH := fmt.Sprintf("#f%d", i)
		names[namePH] = key
		v := fields[key]
		if v == nil {
			removes = append(removes, namePH)
			continue
		}
		av, err := marshalFieldValue(v)
		if err != nil {
			return "", fmt.Errorf("marshal field %q: %w", key, err)
		}
		valuePH := fmt.Sprintf(":v%d", i)
		values[valuePH] = av
		sets = append(sets, namePH+" = "+valuePH)
	}

	expr := "SET " + strings.Join(sets, ", ")
	if len(removes) > 0 {
		expr += " REMOVE " + strings.Join(removes, ", ")
	}
	return expr, nil
}

func marshalFieldValue(v any) (types.AttributeValue, error) {
	switch t := v.(type) {
	case string:
		return &types.AttributeValueMemberS{Value: t}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(t, 'f', -1, 64)}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: t}, nil
	case time.Time:
		return &types.AttributeValueMemberS{Value: t.UTC().Format(time.RFC3339Nano)}, nil
	}
	return attributevalue.Marshal(v)
}

func toJobItem(j entities.Job) jobItem {
	items := make([]jobLineItem, 0, len(j.LineItems))
	for _, li := range j.LineItems {
		items = append(items, jobLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitRate:    li.UnitRate,
			ItemType:    string(li.ItemType),
		})
	}
	return jobItem{
		ID:                      j.ID,
		CustomerID:              j.CustomerID,
		AssignedWorkerID:        strFromPtr(j.AssignedWorkerID),
		Status:                  string(j.Status),
		Title:                   j.Title,
		ScheduledStart:          timeToString(j.ScheduledStart),
		ScheduledEnd:            timeToString(j.ScheduledEnd),
		PricingModel:            string(j.PricingModel),
		FlatRateAmount:          j.FlatRateAmount,
		UnitCount:               j.UnitCount,
		UnitPrice:               j.UnitPrice,
		Percentage:              j.Percentage,
		PercentageBase:          j.PercentageBaseAmount,
		RecurringIntervl:        j.RecurringInterval,
		RecurringRate:           j.RecurringRate,
		MilestoneBase:           j.MilestoneBaseAmount,
		TaxRate:                 j.TaxRate,
		LineItems:               items,
		CancellationReason:      j.CancellationReason,
		CancellationInitiatedBy: j.CancellationInitiatedBy,
		CancellationNotes:       j.CancellationNotes,
		CancelledAt:             timeToString(j.CancelledAt),
		OnHoldReason:            j.OnHoldReason,
		OnHoldNotes:             j.OnHoldNotes,
		EstimatedResumeDate:     j.EstimatedResumeDate,
		OnHoldAt:                timeToString(j.OnHoldAt),
		ReschedulingReason:      j.ReschedulingReason,
		ReschedulingNotes:       j.ReschedulingNotes,
		ReschedulingRequestedAt: timeToString(j.ReschedulingRequestedAt),
		WorkPerformed:           j.WorkPerformed,
		MaterialsUsed:           j.MaterialsUsed,
		CompletedAt:             timeToString(j.CompletedAt),
		StartedAt:               timeToString(j.StartedAt),
		ResolutionNotes:         j.ResolutionNotes,
		InvoiceDate:             j.InvoiceDate,
		DueDate:                 j.DueDate,
		PaymentTerms:            j.PaymentTerms,
		InvoiceID:               strFromPtr(j.InvoiceID),
		CreatedAt:               j.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:               j.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromJobItem(it jobItem) entities.Job {
	items := make([]entities.JobLineItem, 0, len(it.LineItems))
	for _, li := range it.LineItems {
		items = append(items, entities.JobLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitRate:    li.UnitRate,
			ItemType:    entities.LineItemType(li.ItemType),
		})
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return entities.Job{
		ID:                      it.ID,
		CustomerID:              it.CustomerID,
		AssignedWorkerID:        ptrFromStr(it.AssignedWorkerID),
		Status:                  entities.JobStatus(it.Status),
		Title:                   it.Title,
		ScheduledStart:          stringToTime(it.ScheduledStart),
		ScheduledEnd:            stringToTime(it.ScheduledEnd),
		PricingModel:            entities.PricingModel(it.PricingModel),
		FlatRateAmount:          it.FlatRateAmount,
		UnitCount:               it.UnitCount,
		UnitPrice:               it.UnitPrice,
		Percentage:              it.Percentage,
		PercentageBaseAmount:    it.PercentageBase,
		RecurringInterval:       it.RecurringIntervl,
		RecurringRate:           it.RecurringRate,
		MilestoneBaseAmount:     it.MilestoneBase,
		TaxRate:                 it.TaxRate,
		LineItems:               items,
		CancellationReason:      it.CancellationReason,
		CancellationInitiatedBy: it.CancellationInitiatedBy,
		CancellationNotes:       it.CancellationNotes,
		CancelledAt:             stringToTime(it.CancelledAt),
		OnHoldReason:            it.OnHoldReason,
		OnHoldNotes:             it.OnHoldNotes,
		EstimatedResumeDate:     it.EstimatedResumeDate,
		OnHoldAt:                stringToTime(it.OnHoldAt),
		ReschedulingReason:      it.ReschedulingReason,
		ReschedulingNotes:       it.ReschedulingNotes,
		ReschedulingRequestedAt: stringToTime(it.ReschedulingRequestedAt),
		WorkPerformed:           it.WorkPerformed,
		MaterialsUsed:           it.MaterialsUsed,
		CompletedAt:             stringToTime(it.CompletedAt),
		StartedAt:               stringToTime(it.StartedAt),
		ResolutionNotes:         it.ResolutionNotes,
		InvoiceDate:             it.InvoiceDate,
		DueDate:                 it.DueDate,
		PaymentTerms:            it.PaymentTerms,
		InvoiceID:               ptrFromStr(it.InvoiceID),
		CreatedAt:               createdAt,
		UpdatedAt:               updatedAt,
	}
}
