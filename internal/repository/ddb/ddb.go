// Package ddb implements the repository interface using AWS DynamoDB.
// Each sheet is one partition and each row is one item keyed by the record id.
// This is the only layer that should have knowledge of DynamoDB specifics.
package ddb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"kindling/internal/domain"
	"kindling/internal/repository"
	"kindling/internal/repository/rows"
	appErrors "kindling/pkg/errors"
)

// DBClient defines the DynamoDB operations the repository needs, making it testable.
type DBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

const (
	headerSK  = "HEADER"
	rowPrefix = "ROW#"
)

// ddbRow is a single sheet row.
type ddbRow struct {
	PK      string            `dynamodbav:"PK"`
	SK      string            `dynamodbav:"SK"`
	RowID   string            `dynamodbav:"RowID"`
	Cells   map[string]string `dynamodbav:"Cells"`
	Written int64             `dynamodbav:"Written"`
}

// ddbHeader records the column order of a sheet.
type ddbHeader struct {
	PK      string   `dynamodbav:"PK"`
	SK      string   `dynamodbav:"SK"`
	Columns []string `dynamodbav:"Columns"`
}

// Repository is the DynamoDB store adapter.
type Repository struct {
	client    DBClient
	tableName string
	logger    *zap.Logger
	now       func() time.Time
}

var _ repository.Repository = (*Repository)(nil)

// NewRepository creates a new instance of the DynamoDB repository.
func NewRepository(client DBClient, tableName string, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{client: client, tableName: tableName, logger: logger, now: time.Now}
}

func sheetPK(s repository.Sheet) string { return "SHEET#" + string(s) }

func rowKey(s repository.Sheet, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: sheetPK(s)},
		"SK": &types.AttributeValueMemberS{Value: rowPrefix + id},
	}
}

func (r *Repository) ListIdeas(ctx context.Context) ([]domain.Idea, error) {
	items, err := r.queryRows(ctx, repository.SheetIdeas)
	if err != nil {
		return nil, err
	}
	ideas := make([]domain.Idea, 0, len(items))
	for _, item := range items {
		ideas = append(ideas, rows.ToIdea(item.Cells))
	}
	return ideas, nil
}

func (r *Repository) GetIdea(ctx context.Context, id string) (domain.Idea, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       rowKey(repository.SheetIdeas, id),
	})
	if err != nil {
		return domain.Idea{}, r.translate(err, "failed to get idea")
	}
	if result.Item == nil {
		return domain.Idea{}, repository.NewNotFound("idea", id)
	}
	var item ddbRow
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return domain.Idea{}, appErrors.Wrap(err, "failed to unmarshal idea row")
	}
	return rows.ToIdea(item.Cells), nil
}

func (r *Repository) CreateIdea(ctx context.Context, idea domain.Idea) error {
	absent := expression.Name("PK").AttributeNotExists()
	err := r.putRow(ctx, repository.SheetIdeas, idea.ID, rows.FromIdea(idea), &absent)
	if isConditionFailed(err) {
		return repository.ErrConflict{Resource: "idea", ID: idea.ID}
	}
	return err
}

// UpdateIdea rewrites the cells of an existing row in place. The row keeps its
// original write stamp, so its position in the collection does not change.
func (r *Repository) UpdateIdea(ctx context.Context, idea domain.Idea) error {
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name("Cells"), expression.Value(rows.FromIdea(idea)))).
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return appErrors.Wrap(err, "failed to build update expression")
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       rowKey(repository.SheetIdeas, idea.ID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if isConditionFailed(err) {
		return repository.NewNotFound("idea", idea.ID)
	}
	if err != nil {
		return r.translate(err, "failed to update idea row")
	}
	return nil
}

func (r *Repository) DeleteIdea(ctx context.Context, id string) error {
	expr, err := expression.NewBuilder().WithCondition(expression.Name("PK").AttributeExists()).Build()
	if err != nil {
		return appErrors.Wrap(err, "failed to build delete condition")
	}
	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       rowKey(repository.SheetIdeas, id),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if isConditionFailed(err) {
		return repository.NewNotFound("idea", id)
	}
	if err != nil {
		return r.translate(err, "failed to delete idea")
	}
	r.logger.Debug("Idea row deleted", zap.String("ideaID", id))
	return nil
}

func (r *Repository) ListThemes(ctx context.Context) ([]domain.Theme, error) {
	items, err := r.queryRows(ctx, repository.SheetThemes)
	if err != nil {
		return nil, err
	}
	themes := make([]domain.Theme, 0, len(items))
	for _, item := range items {
		themes = append(themes, rows.ToTheme(item.Cells))
	}
	return themes, nil
}

func (r *Repository) CreateTheme(ctx context.Context, theme domain.Theme) error {
	return r.putRow(ctx, repository.SheetThemes, theme.ID, rows.FromTheme(theme), nil)
}

func (r *Repository) ListLearnings(ctx context.Context) ([]domain.Learning, error) {
	items, err := r.queryRows(ctx, repository.SheetLearnings)
	if err != nil {
		return nil, err
	}
	learnings := make([]domain.Learning, 0, len(items))
	for _, item := range items {
		learnings = append(learnings, rows.ToLearning(item.Cells))
	}
	return learnings, nil
}

func (r *Repository) CreateLearning(ctx context.Context, learning domain.Learning) error {
	return r.putRow(ctx, repository.SheetLearnings, learning.ID, rows.FromLearning(learning), nil)
}

// InitializeTables writes the header item of every sheet.
func (r *Repository) InitializeTables(ctx context.Context) error {
	headers := map[repository.Sheet][]string{
		repository.SheetIdeas:     rows.IdeaHeaders,
		repository.SheetThemes:    rows.ThemeHeaders,
		repository.SheetLearnings: rows.LearningHeaders,
	}
	for _, sheet := range repository.Sheets {
		item, err := attributevalue.MarshalMap(ddbHeader{PK: sheetPK(sheet), SK: headerSK, Columns: headers[sheet]})
		if err != nil {
			return appErrors.Wrap(err, "failed to marshal header item")
		}
		if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      item,
		}); err != nil {
			return r.translate(err, fmt.Sprintf("failed to initialize sheet %s", sheet))
		}
	}
	r.logger.Info("Sheets initialized", zap.String("table", r.tableName))
	return nil
}

// putRow writes one row, optionally guarded by a condition on the existing item.
func (r *Repository) putRow(ctx context.Context, sheet repository.Sheet, id string, cells rows.Row, cond *expression.ConditionBuilder) error {
	item, err := attributevalue.MarshalMap(ddbRow{
		PK:      sheetPK(sheet),
		SK:      rowPrefix + id,
		RowID:   id,
		Cells:   cells,
		Written: r.now().UnixNano(),
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal row")
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	}
	if cond != nil {
		expr, err := expression.NewBuilder().WithCondition(*cond).Build()
		if err != nil {
			return appErrors.Wrap(err, "failed to build condition")
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		if isConditionFailed(err) {
			return err
		}
		return r.translate(err, fmt.Sprintf("failed to write %s row", sheet))
	}
	return nil
}

// queryRows reads every row of a sheet in first-write order.
func (r *Repository) queryRows(ctx context.Context, sheet repository.Sheet) ([]ddbRow, error) {
	keyExpr := expression.Key("PK").Equal(expression.Value(sheetPK(sheet))).
		And(expression.Key("SK").BeginsWith(rowPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyExpr).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build query expression")
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var out []ddbRow
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, r.translate(err, fmt.Sprintf("failed to query %s", sheet))
		}
		for _, raw := range page.Items {
			var item ddbRow
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping unreadable row", zap.String("sheet", string(sheet)), zap.Error(err))
				continue
			}
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Written < out[j].Written })
	return out, nil
}

// translate maps service-side failures onto application error categories.
func (r *Repository) translate(err error, message string) error {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return appErrors.NewUnavailable("table "+r.tableName+" does not exist", err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		r.logger.Warn("DynamoDB request failed",
			zap.String("code", apiErr.ErrorCode()),
			zap.String("fault", apiErr.ErrorFault().String()),
		)
		return appErrors.NewUpstream(message, err)
	}
	return appErrors.NewUnavailable(message, err)
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
