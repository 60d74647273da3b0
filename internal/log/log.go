// Package log writes one JSON object per line through the standard logger.
package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Level string

const (
	LevelInfo     Level = "info"
	LevelAudit    Level = "audit"
	LevelSecurity Level = "security"
	LevelWarn     Level = "warn"
	LevelError    Level = "error"
)

type entry struct {
	TS      string         `json:"ts"`
	Level   Level          `json:"level"`
	Action  string         `json:"action"`
	ReqID   string         `json:"req_id,omitempty"`
	IP      string         `json:"ip,omitempty"`
	Method  string         `json:"method,omitempty"`
	Path    string         `json:"path,omitempty"`
	Status  int            `json:"status,omitempty"`
	AdminID int64          `json:"admin_id,omitempty"`
	Ref     string         `json:"ref,omitempty"`
	Err     string         `json:"err,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// write emits one line. c is nil outside a request (services, the sweep).
// A client_reference field is also lifted to ref so one payment can be
// followed across checkout, callback and reconcile lines.
func write(level Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action, Fields: fields}
	if c != nil {
		e.IP = c.IP()
		e.Method = c.Method()
		e.Path = c.Path()
		e.Status = c.Response().StatusCode()
		if rid, ok := c.Locals("requestid").(string); ok {
			e.ReqID = rid
		}
		if id, ok := c.Locals("adminID").(int64); ok {
			e.AdminID = id
		}
	}
	if ref, ok := fields["client_reference"].(string); ok {
		e.Ref = ref
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, merr := json.Marshal(e)
	if merr != nil {
		log.Printf(`{"level":"error","action":"log.marshal.fail","err":%q}`, merr.Error())
		return
	}
	log.Println(string(b))
}

// Info records normal progress.
func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelInfo, c, action, nil, fields)
}

// Audit records a state change made by an admin or a customer.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelAudit, c, action, nil, fields)
}

// Security records refused access: bad tokens, failed logins, rate limits,
// rejected input.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelSecurity, c, action, nil, fields)
}

// Warn is an operational problem the request survived, such as a failed
// SMS or a malformed provider callback.
func Warn(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(LevelWarn, c, action, err, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(LevelError, c, action, err, fields)
}
