package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/marketplace-backend/internal/dto"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/storage"
)

// Разрешённые типы файлов для загрузки
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые расширения файлов
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// MediaHandler управляет загрузкой и удалением медиа-файлов.
// Полученный ключ прикладывается к профилю, услуге или посту полем photo_key.
type MediaHandler struct {
	storage storage.MediaStorage
}

// NewMediaHandler создаёт новый хэндлер.
func NewMediaHandler(store storage.MediaStorage) *MediaHandler {
	return &MediaHandler{storage: store}
}

// UploadPhoto обрабатывает POST /media/photos.
func (h *MediaHandler) UploadPhoto(c *gin.Context) {
	principalID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}
	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		common.RespondBadRequest(c, fmt.Sprintf("неподдерживаемый формат файла. Разрешены: %s", strings.Join(extensionList(), ", ")))
		return
	}

	src, err := file.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer src.Close()

	// Магические байты: расширению доверять нельзя.
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		common.RespondBadRequest(c, "не удалось определить тип файла. Разрешены только изображения")
		return
	}

	contentType := kind.MIME.Value
	if !allowedMimeTypes[contentType] {
		common.RespondBadRequest(c, fmt.Sprintf("неподдерживаемый тип файла (%s)", contentType))
		return
	}

	expectedExt := "." + kind.Extension
	// .jpg и .jpeg - это одно и то же
	if ext != expectedExt && !(ext == ".jpg" && expectedExt == ".jpeg") && !(ext == ".jpeg" && expectedExt == ".jpg") {
		common.RespondBadRequest(c, fmt.Sprintf("расширение файла (%s) не соответствует реальному типу (%s)", ext, expectedExt))
		return
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		_ = c.Error(err)
		return
	}

	key, size, err := h.storage.Save(c.Request.Context(), principalID, file.Filename, src)
	if err != nil {
		_ = c.Error(err)
		return
	}

	url, err := h.storage.URL(c.Request.Context(), key)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.MediaResponse{
		Key:  key,
		URL:  url,
		Size: size,
		Type: contentType,
	})
}

// DeletePhoto обрабатывает DELETE /media/photos.
// Ключ приходит query-параметром: он содержит слэши.
func (h *MediaHandler) DeletePhoto(c *gin.Context) {
	principalID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	key := c.Query("key")
	if key == "" {
		common.RespondBadRequest(c, "параметр key обязателен")
		return
	}

	// Удалять можно только собственные файлы: ключ начинается с ID владельца.
	if !ownsKey(key, principalID.String()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "можно удалять только свои файлы"})
		return
	}

	if err := h.storage.Delete(c.Request.Context(), key); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ownsKey проверяет, что ключ принадлежит принципалу.
func ownsKey(key, principalID string) bool {
	parts := strings.Split(strings.TrimPrefix(key, "uploads/"), "/")
	return len(parts) > 1 && parts[0] == principalID
}

// extensionList возвращает список разрешённых расширений.
func extensionList() []string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	return exts
}
