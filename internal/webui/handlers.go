package webui

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/typescribe/internal/render"
	"github.com/tensorplex-labs/typescribe/internal/submission"
)

// Multipart field names accepted by /generate and /api/generate. They match
// the names the backend expects.
const (
	fieldSDKName = "sdk_name"
	fieldVersion = "version"
	fieldBaseURL = "base_url"
	fieldDocURL  = "doc_url"
	fieldDocFile = "doc_file"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(createResponse(map[string]string{"status": "ok"}, nil))
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	body, err := renderPage(s.stateView())
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	c.Type("html", "utf-8")
	return c.Send(body)
}

// handleGenerate updates the form from the posted fields and starts the
// submission in the background.
func (s *Server) handleGenerate(c *fiber.Ctx) error {
	if s.coord.Busy() {
		return fiber.NewError(fiber.StatusConflict, submission.ErrSubmissionInFlight.Error())
	}

	s.formMu.Lock()
	err := fillForm(c, s.form)
	form := s.form.Clone()
	s.formMu.Unlock()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.wg.Add(1)
	done, err := s.coord.Start(s.ctx, form)
	if err != nil {
		s.wg.Done()
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	go func() {
		defer s.wg.Done()
		st := <-done
		log.Debug().Stringer("phase", st.Phase).Msg("background submission settled")
	}()

	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) handleCancel(c *fiber.Ctx) error {
	if !s.coord.Cancel() {
		log.Debug().Msg("cancel requested with nothing in flight")
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) handlePreset(c *fiber.Ctx) error {
	s.formMu.Lock()
	err := s.coord.ApplyPreset(s.form, c.Params("name"))
	s.formMu.Unlock()

	switch {
	case errors.Is(err, submission.ErrUnknownPreset):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, submission.ErrSubmissionInFlight):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case err != nil:
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) handleClearFile(c *fiber.Ctx) error {
	if s.coord.Busy() {
		return fiber.NewError(fiber.StatusConflict, submission.ErrSubmissionInFlight.Error())
	}
	s.formMu.Lock()
	s.form.ClearDocFile()
	s.formMu.Unlock()
	return c.Redirect("/", fiber.StatusSeeOther)
}

// handleCopy raises the block's copied flag and returns its literal text;
// the browser puts it on the clipboard.
func (s *Server) handleCopy(c *fiber.Ctx) error {
	kind, err := render.ParseBlockKind(c.Params("block"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	d := s.currentDisplay()
	if d.Empty() {
		return fiber.NewError(fiber.StatusNotFound, render.ErrNothingToDownload.Error())
	}
	if err := d.Copy(kind); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	c.Type("txt", "utf-8")
	return c.SendString(d.Text(kind))
}

func (s *Server) handleDownload(c *fiber.Ctx) error {
	d := s.currentDisplay()
	if d.Empty() {
		return fiber.NewError(fiber.StatusNotFound, render.ErrNothingToDownload.Error())
	}
	c.Attachment(d.DownloadName())
	c.Set(fiber.HeaderContentType, "text/typescript; charset=utf-8")
	return c.SendString(d.Text(render.BlockCode))
}

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(createResponse(s.stateView(), nil))
}

// handleAPIGenerate runs one submission synchronously from a fresh form.
func (s *Server) handleAPIGenerate(c *fiber.Ctx) error {
	form := submission.NewForm()
	if err := fillForm(c, form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(createResponse(GenerateView{}, err))
	}

	st, err := s.coord.Submit(c.UserContext(), form)
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(createResponse(GenerateView{}, err))
	}

	if st.Phase == submission.PhaseFailed {
		status := fiber.StatusBadGateway
		var verr *submission.ValidationError
		if errors.As(st.Err, &verr) {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(createResponse(GenerateView{}, st.Err))
	}

	res := st.Result
	return c.JSON(createResponse(GenerateView{
		Code:         res.Code,
		Message:      res.Message,
		UsageExample: res.UsageExample,
		DownloadName: render.DownloadFileName(render.SuggestedName(res.Message)),
	}, nil))
}

func (s *Server) stateView() StateView {
	st := s.coord.State()
	loading := st.Loading()

	s.formMu.Lock()
	view := StateView{
		Phase:        st.Phase,
		Error:        st.ErrorMessage(),
		Form:         s.form.Snapshot(),
		DocURLLocked: s.form.DocURLLocked(loading),
		ConfigLocked: s.form.ConfigLocked(loading),
		Presets:      submission.Presets(),
	}
	s.formMu.Unlock()

	if loading {
		frame := render.FrameAt(st.Elapsed(time.Now()))
		view.Loading = &frame
	}
	if st.Phase == submission.PhaseSucceeded && st.Result != nil {
		view.Message = st.Result.Message
	}
	if d := s.currentDisplay(); !d.Empty() {
		view.Blocks = d.Blocks()
		view.DownloadName = d.DownloadName()
	}
	return view
}

// fillForm copies the posted fields into form. An uploaded file wins over a
// URL; a form that already holds a file keeps it when neither is posted.
func fillForm(c *fiber.Ctx, form *submission.Form) error {
	form.SetSDKName(c.FormValue(fieldSDKName))
	form.SetVersion(c.FormValue(fieldVersion))
	form.SetBaseURL(c.FormValue(fieldBaseURL))

	if fh, err := c.FormFile(fieldDocFile); err == nil && fh.Size > 0 {
		data, err := readFormFile(fh)
		if err != nil {
			return err
		}
		form.SetDocFile(fh.Filename, data)
		return nil
	}

	if docURL := c.FormValue(fieldDocURL); docURL != "" || !form.HasFile() {
		form.SetDocURL(docURL)
	}
	return nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return data, nil
}
