package email

import (
	"fmt"
	"strings"
)

// KV is one ordered row of the field-value table in a notification mail.
type KV struct {
	Key   string
	Value string
}

// WorkflowNotificationHTML renders the workflow notification mail: message,
// optional field-value table, and a deep link into the submission detail
// screen.
func WorkflowNotificationHTML(url, message string, rows []KV) string {
	var table strings.Builder
	for _, row := range rows {
		table.WriteString(fmt.Sprintf(`
          <tr>
            <td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">%s</td>
            <td style="padding: 8px; border: 1px solid #ddd;">%s</td>
          </tr>`, row.Key, row.Value))
	}

	dataSection := ""
	if table.Len() > 0 {
		dataSection = fmt.Sprintf(`
              <h3 style="color: #333; margin-top: 20px;">Form Data:</h3>
              <table style="width: 100%%; border-collapse: collapse; margin-top: 10px;">%s
              </table>`, table.String())
	}

	return fmt.Sprintf(`<!DOCTYPE html>
      <html>
      <head>
        <meta charset="UTF-8">
        <meta name="viewport" content="width=device-width, initial-scale=1.0">
      </head>
      <body style="font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 20px;">
        <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
          <div style="background-color: #4CAF50; color: white; padding: 20px; text-align: center;">
            <h1 style="margin: 0;">Workflow Notification</h1>
          </div>
          <div style="padding: 30px;">
            <p style="color: #333; font-size: 16px; line-height: 1.5;">%s</p>%s
            <div style="text-align: center; margin-top: 30px;">
              <a href="%s" style="background-color: #4CAF50; color: white; padding: 12px 30px; text-decoration: none; border-radius: 4px; display: inline-block;">View Details</a>
            </div>
          </div>
          <div style="background-color: #f9f9f9; padding: 15px; text-align: center; color: #666; font-size: 12px;">
            <p style="margin: 0;">This is an automated notification from your workflow system.</p>
          </div>
        </div>
      </body>
      </html>`, message, dataSection, url)
}
