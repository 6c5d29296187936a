package workflows

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"Backend-Relific-Core/src/models"
	"Backend-Relific-Core/src/services/workflows/email"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserResolver looks up notification recipients. Backed by the users
// service in production, stubbed in tests.
type UserResolver interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ManagerOf(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Engine evaluates workflow definitions against a written submission and
// dispatches the configured notifications. Delivery failures are logged per
// recipient and never abort evaluation or roll back the submission.
type Engine struct {
	Users    UserResolver
	Mail     email.MailSender
	Hostname string
	Tenant   string
}

// TriggerSingleWorkflow evaluates workflow stepNo for one submission.
// A workflow is triggered when its own conditions pass under its logic
// operator, or when the previous workflow's approvalStatus is Approved
// (sequential gating; the OR here is long-standing documented behavior).
// isNew marks a freshly created record; the creator confirmation fires only
// then, so later updates that still satisfy workflow 0 do not resend it.
func (e *Engine) TriggerSingleWorkflow(ctx context.Context, doc bson.M, slug string, form *models.Form, stepNo int, project string, isNew bool) bool {
	if stepNo < 0 || stepNo >= len(form.Workflows) {
		return false
	}
	workflow := form.Workflows[stepNo]

	prevApproved := stepNo != 0 &&
		stepApprovalStatus(doc, stepNo-1) == models.ApprovalApproved

	triggered := evalConditions(doc, workflow.Triggers, workflow.LogicOperator) || prevApproved

	if !triggered {
		return false
	}
	if prevApproved {
		log.Printf("[workflow] %s step %d triggered via previous approval", slug, stepNo)
	}

	for _, step := range workflow.Steps {
		// step-level triggers are always AND-combined
		if len(step.Triggers) > 0 && !evalConditions(doc, step.Triggers, "AND") {
			continue
		}

		if step.Action == "email" && len(step.Users) > 0 {
			e.notifyUsers(ctx, doc, slug, stepNo, project, step)
		}
		if step.NotifyManager {
			e.notifyManager(ctx, doc, slug, stepNo, step)
		}
		if step.NotifyCreator && step.NotifyChannels.Email && stepNo == 0 && isNew {
			e.notifyCreator(ctx, doc, slug, step)
		}
	}

	return true
}

func (e *Engine) notifyUsers(ctx context.Context, doc bson.M, slug string, stepNo int, project string, step models.Step) {
	users, err := e.Users.FindByIDs(ctx, step.Users)
	if err != nil {
		log.Println("❌ resolve workflow recipients:", err)
		return
	}

	recipients := make([]string, 0, len(users))
	for _, u := range users {
		if u.Email != "" {
			recipients = append(recipients, u.Email)
		}
	}
	if len(recipients) == 0 {
		return
	}

	summary := buildSummary(doc, step.SelectedFields, recipients[0])
	id := docID(doc)
	subject := fmt.Sprintf("Workflow Notification | Form %s - Id %s", slug, id)

	for _, recipient := range recipients {
		url := fmt.Sprintf("%s/%s/dynamic-ui/details?slug=%s&id=%s&isApprovedScreen=true&step=%d&email=%s&project=%s",
			e.Hostname, e.Tenant, slug, id, stepNo, recipient, project)
		body := email.WorkflowNotificationHTML(url, step.Message, summary)

		if err := e.Mail.Send(recipient, subject, body); err != nil {
			log.Println("❌ workflow notification to", recipient, ":", err)
		}
	}
}

func (e *Engine) notifyManager(ctx context.Context, doc bson.M, slug string, stepNo int, step models.Step) {
	creatorID, ok := createdBy(doc)
	if !ok {
		return
	}

	creator, err := e.Users.FindByID(ctx, creatorID)
	if err != nil || creator == nil {
		log.Println("❌ resolve submission creator:", err)
		return
	}

	manager, err := e.Users.ManagerOf(ctx, creatorID)
	if err != nil {
		log.Println("❌ resolve project manager:", err)
		return
	}
	if manager == nil || manager.Email == "" {
		return
	}

	summary := buildSummary(doc, step.SelectedFields, creator.Email)
	id := docID(doc)
	url := fmt.Sprintf("%s/%s/dynamic-ui/details?slug=%s&id=%s&isApprovedScreen=false&step=%d&email=%s",
		e.Hostname, e.Tenant, slug, id, stepNo, manager.Email)
	body := email.WorkflowNotificationHTML(url,
		fmt.Sprintf("you are getting this notification because %s filled this form", creator.Name),
		summary)

	subject := fmt.Sprintf("Workflow Notification | Form %s - Id %s", slug, id)
	if err := e.Mail.Send(manager.Email, subject, body); err != nil {
		log.Println("❌ manager notification to", manager.Email, ":", err)
	}
}

func (e *Engine) notifyCreator(ctx context.Context, doc bson.M, slug string, step models.Step) {
	creatorID, ok := createdBy(doc)
	if !ok {
		return
	}

	creator, err := e.Users.FindByID(ctx, creatorID)
	if err != nil || creator == nil || creator.Email == "" {
		return
	}

	message := step.CreatorMessage
	if message == "" {
		message = "Your form has been submitted successfully"
	}

	url := fmt.Sprintf("%s/%s/dynamic-ui/details?slug=%s&id=%s", e.Hostname, e.Tenant, slug, docID(doc))
	body := email.WorkflowNotificationHTML(url, message, nil)

	subject := fmt.Sprintf("Form Submission Confirmation | %s", slug)
	if err := e.Mail.Send(creator.Email, subject, body); err != nil {
		log.Println("❌ creator confirmation to", creator.Email, ":", err)
	}
}

// evalConditions applies the trigger clauses under the logic operator.
// AND over an empty clause list is vacuously true, OR is false.
func evalConditions(doc bson.M, conds []models.Condition, logicOperator string) bool {
	if logicOperator == "AND" {
		for _, c := range conds {
			if !evalCondition(doc, c) {
				return false
			}
		}
		return true
	}
	for _, c := range conds {
		if evalCondition(doc, c) {
			return true
		}
	}
	return false
}

func evalCondition(doc bson.M, c models.Condition) bool {
	fieldVal := doc[c.Field]

	switch c.Operation {
	case "=":
		return looseEqual(fieldVal, c.Value)
	case "!=":
		return !looseEqual(fieldVal, c.Value)
	case ">", "<", ">=", "<=":
		a, aok := toNumber(fieldVal)
		b, bok := toNumber(c.Value)
		if !aok || !bok {
			return false
		}
		switch c.Operation {
		case ">":
			return a > b
		case "<":
			return a < b
		case ">=":
			return a >= b
		default:
			return a <= b
		}
	}
	return false
}

// looseEqual compares numerically when both sides are numbers, otherwise by
// string representation.
func looseEqual(a, b interface{}) bool {
	if an, aok := toNumber(a); aok {
		if bn, bok := toNumber(b); bok {
			return an == bn
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// buildSummary redacts the document down to the step's selected fields.
// Object values collapse to their truthy keys; empty values are dropped.
func buildSummary(doc bson.M, selectedFields []string, createdByEmail string) []email.KV {
	var rows []email.KV
	for _, key := range selectedFields {
		value := doc[key]

		var rendered string
		switch m := value.(type) {
		case map[string]interface{}:
			rendered = joinTruthyKeys(m)
		case bson.M:
			rendered = joinTruthyKeys(m)
		case bson.D:
			// documents reloaded from the store decode embedded objects as
			// bson.D, not bson.M
			flat := make(map[string]interface{}, len(m))
			for _, el := range m {
				flat[el.Key] = el.Value
			}
			rendered = joinTruthyKeys(flat)
		case nil:
			continue
		default:
			rendered = fmt.Sprint(value)
		}

		if rendered == "" {
			continue
		}
		rows = append(rows, email.KV{Key: key, Value: rendered})
	}

	if createdByEmail != "" {
		rows = append(rows, email.KV{Key: "Created by", Value: createdByEmail})
	}
	return rows
}

func joinTruthyKeys(m map[string]interface{}) string {
	var keys []string
	for k, v := range m {
		truthy := false
		switch t := v.(type) {
		case bool:
			truthy = t
		case string:
			truthy = t != ""
		case nil:
		default:
			n, ok := toNumber(v)
			truthy = !ok || n != 0
		}
		if truthy {
			keys = append(keys, k)
		}
	}
	// deterministic order for the mail body
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return strings.Join(keys, ",")
}

func docID(doc bson.M) string {
	switch id := doc["_id"].(type) {
	case primitive.ObjectID:
		return id.Hex()
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

func createdBy(doc bson.M) (primitive.ObjectID, bool) {
	switch id := doc["createdBy"].(type) {
	case primitive.ObjectID:
		return id, true
	case string:
		oid, err := primitive.ObjectIDFromHex(id)
		return oid, err == nil
	}
	return primitive.NilObjectID, false
}

// stepApprovalStatus digs workFlowSteps[idx].approvalStatus out of a
// document that may hold freshly-built step structs or decoded BSON.
func stepApprovalStatus(doc bson.M, idx int) string {
	switch steps := doc["workFlowSteps"].(type) {
	case []models.WorkflowStepState:
		if idx < len(steps) {
			return steps[idx].ApprovalStatus
		}
	case primitive.A:
		if idx < len(steps) {
			return approvalStatusOf(steps[idx])
		}
	case []interface{}:
		if idx < len(steps) {
			return approvalStatusOf(steps[idx])
		}
	}
	return ""
}

func approvalStatusOf(step interface{}) string {
	switch s := step.(type) {
	case models.WorkflowStepState:
		return s.ApprovalStatus
	case bson.M:
		if v, ok := s["approvalStatus"].(string); ok {
			return v
		}
	case map[string]interface{}:
		if v, ok := s["approvalStatus"].(string); ok {
			return v
		}
	case bson.D:
		for _, e := range s {
			if e.Key == "approvalStatus" {
				if v, ok := e.Value.(string); ok {
					return v
				}
			}
		}
	}
	return ""
}
