package server

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/roach88/cts/internal/form"
	"github.com/roach88/cts/internal/logo"
)

type pageView struct {
	Title string
	Logo  template.HTML
	Form  template.HTML
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	in := form.Input{}
	st := s.form.State(in, s.form.Validate(r.Context(), in, s.store), false)
	s.renderPage(w, http.StatusOK, st)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	in := form.InputFromValues(r.PostForm.Get)

	// The pressed submit button is the only one sent.
	action := "submit"
	if r.PostForm.Has("update") {
		action = "update"
	}

	msg, res, err := s.form.Submit(r.Context(), in, action, s.store)
	if err != nil {
		s.logger.Error("register", "err", err)
		st := s.form.State(in, res, true)
		st.Messages["submit"] = err.Error()
		s.renderPage(w, http.StatusInternalServerError, st)
		return
	}

	if msg == "" {
		s.renderPage(w, http.StatusOK, s.form.State(in, res, true))
		return
	}

	empty := form.Input{}
	st := s.form.State(empty, s.form.Validate(r.Context(), empty, s.store), false)
	st.Alert = msg
	s.renderPage(w, http.StatusOK, st)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, st form.State) {
	if s.store == nil {
		st.Disabled = form.MsgUnavailable
	}

	var formHTML bytes.Buffer
	if err := s.form.Render(&formHTML, st); err != nil {
		s.logger.Error("render form", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var logoHTML bytes.Buffer
	l, err := logo.New(s.logo)
	if err == nil {
		err = l.WriteSVG(&logoHTML)
	}
	if err != nil {
		s.logger.Error("render logo", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var page bytes.Buffer
	err = pageTemplate.Execute(&page, pageView{
		Title: strings.ReplaceAll(s.logo.Text, "\n", " "),
		Logo:  template.HTML(logoHTML.String()),
		Form:  template.HTML(formHTML.String()),
	})
	if err != nil {
		s.logger.Error("render page", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(page.Bytes())
}
