package panel

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

const attachmentsField = "anexos"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// SendTicket e-mails a ticket for a chamado. Without files it posts JSON to the
// plain ticket endpoint; with files it streams a multipart form with one
// "anexos" part per file, in staging order.
func (c *Client) SendTicket(ctx context.Context, chamadoID int64, msg types.TicketMessage, files []types.StagedFile) (*types.TicketResult, error) {
	if strings.TrimSpace(msg.Subject) == "" || strings.TrimSpace(msg.Message) == "" {
		return nil, ErrMissingTicketFields
	}
	for _, f := range files {
		if f.Open == nil {
			return nil, fmt.Errorf("%w: %s", ErrFileNotReadable, f.Name)
		}
	}

	url, err := tool.BuildTicketURL(c.baseURL, chamadoID, len(files) > 0)
	if err != nil {
		return nil, err
	}

	var result types.TicketResult
	if len(files) == 0 {
		if err := c.doJSON(ctx, http.MethodPost, url, msg, &result); err != nil {
			return nil, fmt.Errorf("failed to send ticket for chamado %d: %w", chamadoID, err)
		}
		tool.DefaultLogger.Infof("[Panel] Ticket sent for chamado %d", chamadoID)
		return &result, nil
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeTicketForm(ctx, form, msg, files))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if err := c.send(req, &result); err != nil {
		return nil, fmt.Errorf("failed to send ticket with %d attachments for chamado %d: %w", len(files), chamadoID, err)
	}
	tool.DefaultLogger.Infof("[Panel] Ticket sent for chamado %d with %d attachments", chamadoID, len(files))
	return &result, nil
}

func writeTicketForm(ctx context.Context, form *multipart.Writer, msg types.TicketMessage, files []types.StagedFile) error {
	fields := [][2]string{
		{"assunto", msg.Subject},
		{"mensagem", msg.Message},
		{"prioridade", strconv.FormatBool(msg.Priority)},
		{"enviar_copia", strconv.FormatBool(msg.SendCopy)},
		{"modelo", msg.Template},
	}
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", field[0], err)
		}
	}
	for _, f := range files {
		if err := writeAttachment(ctx, form, f); err != nil {
			return err
		}
	}
	return form.Close()
}

func writeAttachment(ctx context.Context, form *multipart.Writer, f types.StagedFile) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		attachmentsField, quoteEscaper.Replace(f.Name)))
	contentType := f.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create part for %s: %w", f.Name, err)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close attachment %s: %v", f.Name, err)
		}
	}()
	written, err := tool.CopyWithContext(ctx, part, src)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Name, err)
	}
	if written != f.Size {
		return fmt.Errorf("size mismatch for %s: staged %d bytes, read %d", f.Name, f.Size, written)
	}
	return nil
}
