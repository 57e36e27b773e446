// Package handler provides the HTTP request handlers of encdec.
// It implements the presentation layer: the HTML form, the worked example
// page and a JSON API, delegating all codec work to the service layer.
//
// Package handler 提供encdec的HTTP请求处理程序。
// 它实现了表示层：HTML表单、示例页面和JSON API，所有编解码工作都委托给服务层。
package handler

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/encdec/internal/service"
	encerrors "github.com/yourusername/encdec/pkg/errors"
	"github.com/yourusername/encdec/pkg/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

// KindBadRequest is reported by the JSON API for bodies it cannot parse
// and KindRequestTooLarge for bodies over the configured limit.
const (
	KindBadRequest      = "BadRequest"
	KindRequestTooLarge = "RequestTooLarge"
)

// Templates parses the embedded page templates.
//
// Templates 解析嵌入的页面模板。
func Templates() (*template.Template, error) {
	return template.New("pages").ParseFS(templateFS, "templates/*.html")
}

// CodecHandler handles the HTML and JSON routes.
// It acts as an adapter between the HTTP layer and the service layer,
// translating requests into service calls and rendering the results.
//
// CodecHandler 处理HTML和JSON路由。
// 它充当HTTP层和服务层之间的适配器，将请求转换为服务调用并渲染结果。
type CodecHandler struct {
	service *service.CodecService
}

// NewCodecHandler creates a handler backed by the given service.
//
// Parameters:
//   - service: The codec service to use for business logic
//
// Returns:
//   - *CodecHandler: A new handler instance
//
// NewCodecHandler 使用给定的服务创建一个新的处理程序。
func NewCodecHandler(service *service.CodecService) *CodecHandler {
	return &CodecHandler{service: service}
}

// Register adds the handler's routes to r.
//
// Register 将处理程序的路由添加到r。
func (h *CodecHandler) Register(r gin.IRouter) {
	r.GET("/", h.Index)
	r.POST("/process", h.ProcessForm)
	r.GET("/example", h.Example)

	api := r.Group("/api/v1")
	api.POST("/process", h.ProcessJSON)
	api.GET("/example", h.ExampleJSON)
}

// formPage is the data of index.html.
type formPage struct {
	Title     string
	Input     string
	Mode      string
	Compress  bool
	HasOutput bool
	Output    string
	Error     string
	Notice    string
}

// examplePage is the data of example.html.
type examplePage struct {
	Title     string
	Original  string
	Decoded   string
	Reencoded string
	Error     string
}

const pageTitle = "Encode / Decode"

// Index renders the empty form, set to encode.
//
// Index 渲染空表单，默认为编码。
func (h *CodecHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", formPage{
		Title:    pageTitle,
		Mode:     pipeline.Encode.String(),
		Compress: h.service.CompressByDefault(),
	})
}

// ProcessForm handles a form submission and re-renders the form with the
// submitted values and either the output or the error message. A classified
// failure is part of the page, so the status stays 200.
//
// ProcessForm 处理表单提交，并使用提交的值以及输出或错误消息重新渲染表单。
// 分类失败是页面的一部分，因此状态码保持200。
func (h *CodecHandler) ProcessForm(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		status, message := http.StatusBadRequest, "could not read the form"
		if isTooLarge(err) {
			status, message = http.StatusRequestEntityTooLarge, "input is too large"
		}
		c.HTML(status, "index.html", formPage{
			Title:    pageTitle,
			Mode:     pipeline.Encode.String(),
			Compress: h.service.CompressByDefault(),
			Error:    message,
		})
		return
	}

	req := service.Request{
		Mode:     c.PostForm("mode"),
		Compress: checked(c.PostForm("zip")),
		Input:    c.PostForm("input"),
	}
	res := h.service.Process(c.Request.Context(), req)

	page := formPage{
		Title:    pageTitle,
		Input:    req.Input,
		Mode:     strings.ToLower(strings.TrimSpace(req.Mode)),
		Compress: req.Compress,
	}
	switch {
	case res.Empty():
		page.Notice = res.Message
	case res.Failed():
		page.Error = res.Message
	default:
		page.HasOutput = true
		page.Output = printable(res.Output)
	}

	c.HTML(http.StatusOK, "index.html", page)
}

// Example renders the worked example page.
//
// Example 渲染示例页面。
func (h *CodecHandler) Example(c *gin.Context) {
	example, err := h.service.Example(c.Request.Context())
	if err != nil {
		c.HTML(http.StatusInternalServerError, "example.html", examplePage{
			Title: "Example",
			Error: encerrors.MessageOf(err),
		})
		return
	}

	c.HTML(http.StatusOK, "example.html", examplePage{
		Title:     "Example",
		Original:  example.Original,
		Decoded:   printable(example.Decoded),
		Reencoded: example.Reencoded,
	})
}

// ProcessRequest is the JSON body of POST /api/v1/process. A missing
// compress field uses the configured default.
//
// ProcessRequest 是POST /api/v1/process的JSON请求体。
type ProcessRequest struct {
	Input    string `json:"input"`
	Mode     string `json:"mode"`
	Compress *bool  `json:"compress"`
}

// ProcessResponse is the JSON body returned on success or empty input.
type ProcessResponse struct {
	Output     string `json:"output"`
	Mode       string `json:"mode,omitempty"`
	Compressed bool   `json:"compressed"`
	Empty      bool   `json:"empty,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ErrorBody is the JSON error detail.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ProcessJSON handles POST /api/v1/process.
//
// ProcessJSON 处理POST /api/v1/process。
func (h *CodecHandler) ProcessJSON(c *gin.Context) {
	var body ProcessRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorBody{Kind: KindRequestTooLarge, Message: "request body is too large"}})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{Kind: KindBadRequest, Message: err.Error()}})
		return
	}

	compress := h.service.CompressByDefault()
	if body.Compress != nil {
		compress = *body.Compress
	}

	res := h.service.Process(c.Request.Context(), service.Request{
		Mode:     body.Mode,
		Compress: compress,
		Input:    body.Input,
	})

	switch {
	case res.Empty():
		c.JSON(http.StatusOK, ProcessResponse{Compressed: compress, Empty: true, Message: res.Message})
	case res.Failed():
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{Kind: res.Kind.String(), Message: res.Message}})
	default:
		c.JSON(http.StatusOK, ProcessResponse{
			Output:     printable(res.Output),
			Mode:       strings.ToLower(strings.TrimSpace(body.Mode)),
			Compressed: compress,
		})
	}
}

// ExampleJSON handles GET /api/v1/example.
func (h *CodecHandler) ExampleJSON(c *gin.Context) {
	example, err := h.service.Example(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
			Kind:    encerrors.KindOf(err).String(),
			Message: encerrors.MessageOf(err),
		}})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"original":  example.Original,
		"decoded":   printable(example.Decoded),
		"reencoded": example.Reencoded,
	})
}

// checked reports whether a checkbox value means on.
func checked(v string) bool {
	switch strings.ToLower(v) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

// printable replaces each run of invalid UTF-8 bytes with U+FFFD so that
// decoded binary data can be shown as text.
func printable(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
