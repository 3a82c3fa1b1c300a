package handler

import (
	"mime"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"soundblast/internal/model"
	"soundblast/internal/service"
)

type uploadResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type listResponse struct {
	Success bool               `json:"success"`
	Files   []model.StoredFile `json:"files"`
}

// UploadFile godoc
// @Summary      Upload a media file
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file       formData  file    true   "Media file"
// @Param        thumbnail  formData  string  false  "Thumbnail reference"
// @Success      201  {object}  uploadResponse
// @Failure      400  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /api/files [post]
func UploadFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		meta := model.FileMetadata{
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Thumbnail:   c.FormValue("thumbnail"),
		}
		id, err := files.Upload(c.UserContext(), f, fh.Filename, fh.Size, meta)
		if err != nil {
			return writeAppError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(uploadResponse{Success: true, ID: id})
	}
}

// ListFiles godoc
// @Summary      List stored files
// @Tags         files
// @Produce      json
// @Success      200  {object}  listResponse
// @Failure      500  {object}  errorPayload
// @Router       /api/files/list [get]
func ListFiles(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := files.List(c.UserContext())
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(listResponse{Success: true, Files: list})
	}
}

// DownloadFile godoc
// @Summary      Download a stored file
// @Tags         files
// @Produce      octet-stream
// @Param        id   path      string  true  "File ID"
// @Success      200  {file}    binary
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /api/files/download/{id} [get]
func DownloadFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, file, err := files.Open(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeAppError(c, err)
		}

		c.Set(fiber.HeaderContentType, file.Metadata.ContentType)
		c.Set(fiber.HeaderContentDisposition, contentDisposition(file.Filename))
		// fasthttp closes rc once the body has been written.
		if file.Length > 0 {
			return c.SendStream(rc, int(file.Length))
		}
		return c.SendStream(rc)
	}
}

// contentDisposition builds an attachment header, quoting or RFC 2231
// encoding the filename when it is not a plain token.
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment; filename=" + strconv.Quote(strings.ToValidUTF8(filename, "_"))
}
