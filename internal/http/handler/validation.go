package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"blogapi/internal/media"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and returns the first message per field.
func validateStruct(s any) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, ok := out[fe.Field()]; !ok {
			out[fe.Field()] = fieldMessage(fe)
		}
	}
	return out
}

func attribute(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func fieldMessage(fe validator.FieldError) string {
	attr := attribute(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", attr)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", attr)
	case "max":
		return fmt.Sprintf("The %s must not be greater than %s characters.", attr, fe.Param())
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", attr, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", attr, fe.Param())
	default:
		return fmt.Sprintf("The %s is invalid.", attr)
	}
}

// merge copies src into dst without overwriting existing messages.
func merge(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string)
	}
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}

// checkConfirmation mirrors the "confirmed" rule: <field>_confirmation must equal <field>.
func checkConfirmation(field, value, confirmation string) map[string]string {
	if value != confirmation {
		return map[string]string{field: fmt.Sprintf("The %s field confirmation does not match.", attribute(field))}
	}
	return nil
}

// bindBody decodes a JSON, urlencoded or multipart body into out.
// An empty body leaves out untouched.
func bindBody(c *fiber.Ctx, out any) map[string]string {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return map[string]string{"body": "The request body could not be parsed."}
	}
	return nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// multipartFiles returns the files sent under name or name[].
func multipartFiles(c *fiber.Ctx, name string) []*multipart.FileHeader {
	if !isMultipart(c) {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	files := append([]*multipart.FileHeader{}, form.File[name]...)
	return append(files, form.File[name+"[]"]...)
}

// formValues returns the repeated values of a multipart or urlencoded field sent as name or name[].
func formValues(c *fiber.Ctx, name string) []string {
	var out []string
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil || form == nil {
			return nil
		}
		out = append(out, form.Value[name]...)
		return append(out, form.Value[name+"[]"]...)
	}
	args := c.Request().PostArgs()
	for _, key := range []string{name, name + "[]"} {
		for _, v := range args.PeekMulti(key) {
			out = append(out, string(v))
		}
	}
	return out
}

// formInt64s parses formValues as integers. The slice is nil when the field is absent;
// ok is false when a value is not an integer.
func formInt64s(c *fiber.Ctx, name string) (ids []int64, ok bool) {
	raw := formValues(c, name)
	if len(raw) == 0 {
		return nil, true
	}
	ids = make([]int64, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func isJSON(c *fiber.Ctx) bool {
	return strings.Contains(strings.ToLower(c.Get(fiber.HeaderContentType)), "json")
}

// readImages validates every file under field and reports the first problem under that field.
func readImages(c *fiber.Ctx, field string, maxBytes int64) ([]*media.Upload, map[string]string) {
	files := multipartFiles(c, field)
	uploads := make([]*media.Upload, 0, len(files))
	for _, fh := range files {
		u, err := media.ReadImage(fh, maxBytes)
		if err != nil {
			return nil, map[string]string{field: imageMessage(field, err, maxBytes)}
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

// readImage is readImages for a single optional file.
func readImage(c *fiber.Ctx, field string, maxBytes int64) (*media.Upload, map[string]string) {
	uploads, fields := readImages(c, field, maxBytes)
	if fields != nil || len(uploads) == 0 {
		return nil, fields
	}
	return uploads[0], nil
}

func imageMessage(field string, err error, maxBytes int64) string {
	attr := attribute(field)
	switch {
	case errors.Is(err, media.ErrTooLarge):
		return fmt.Sprintf("The %s must not be greater than %d kilobytes.", attr, maxBytes/1024)
	case errors.Is(err, media.ErrNotImage):
		return fmt.Sprintf("The %s must be a file of type: %s.", attr, strings.Join(media.AcceptedTypes, ", "))
	default:
		return fmt.Sprintf("The %s failed to upload.", attr)
	}
}

// presentString treats empty strings as absent, as optional form fields often arrive blank.
func presentString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// parseID reads a positive integer path parameter.
func parseID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}
