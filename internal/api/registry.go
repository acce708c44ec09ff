package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"xsim/internal/model"
)

// areaCodes maps area ids to the registry code segment.
var areaCodes = map[int]string{1: "CB", 2: "HB", 3: "CM"}

// RegistryCode builds a baggage code such as 2026-AOTAVSEC-XSIMCBT-HB-T00042.
// Threat bags (category above the clear category) get T, clear bags C.
func RegistryCode(year int, examType string, areaID, categoryID int, next string) string {
	area, ok := areaCodes[areaID]
	if !ok {
		area = "XX"
	}
	prefix := "C"
	if categoryID > model.ClearCategoryID {
		prefix = "T"
	}
	if next == "" {
		next = "00001"
	}
	return fmt.Sprintf("%d-AOTAVSEC-XSIM%s-%s-%s%s", year, strings.ToUpper(examType), area, prefix, next)
}

// NextCode returns the next sequence number for an area and item image.
func (c *Client) NextCode(ctx context.Context, areaID, itemImageID int) (string, error) {
	q := url.Values{}
	q.Set("areaID", strconv.Itoa(areaID))
	q.Set("itemImageID", strconv.Itoa(itemImageID))

	var out struct {
		NextNumber json.RawMessage `json:"nextNumber"`
	}
	if err := c.getJSON(ctx, "/baggage/nextCode?"+q.Encode(), &out); err != nil {
		return "", err
	}

	raw := bytes.TrimSpace(out.NextNumber)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("failed to decode next number: %w", err)
	}
	return fmt.Sprintf("%05d", n), nil
}

// Upload is an authored bag ready for the registry.
type Upload struct {
	Top, Side   []byte
	ItemImageID int
	AreaID      int
	CategoryID  int
	ExamType    string
	Code        string
	Position    model.ItemPosition
}

// UploadBaggage posts an authored bag as multipart form data.
func (c *Client) UploadBaggage(ctx context.Context, u Upload) error {
	pos, err := json.Marshal(u.Position)
	if err != nil {
		return fmt.Errorf("failed to encode item position: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range []struct {
		field string
		data  []byte
	}{{"top", u.Top}, {"side", u.Side}} {
		part, err := mw.CreateFormFile(f.field, f.field+".png")
		if err != nil {
			return fmt.Errorf("failed to add %s image: %w", f.field, err)
		}
		if _, err := part.Write(f.data); err != nil {
			return fmt.Errorf("failed to write %s image: %w", f.field, err)
		}
	}
	fields := [][2]string{
		{"itemImageID", strconv.Itoa(u.ItemImageID)},
		{"areaID", strconv.Itoa(u.AreaID)},
		{"itemCategoryID", strconv.Itoa(u.CategoryID)},
		{"examType", u.ExamType},
		{"code", u.Code},
		{"itemPos", string(pos)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish upload body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/baggage/canvas-upload", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, nil)
}
