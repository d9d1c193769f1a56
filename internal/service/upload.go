package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// 允许上传的图片类型与大小上限
var imageTypes = []string{"jpg", "jpeg", "png", "gif", "webp"}

const maxImageSize = 10 << 20

const uploadURLPrefix = "/uploads/"

// UploadService 文件上传服务
type UploadService struct {
	uploadDir string
}

// NewUploadService 创建上传服务实例
func NewUploadService(uploadDir string) (*UploadService, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &UploadService{uploadDir: uploadDir}, nil
}

// Dir 上传目录
func (s *UploadService) Dir() string {
	return s.uploadDir
}

// UploadImage 校验并上传图片
func (s *UploadService) UploadImage(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", validationError("image file is required")
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	allowed := false
	for _, t := range imageTypes {
		if t == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", validationError("image must be one of the following types: %s", strings.Join(imageTypes, ", "))
	}
	if file.Size > maxImageSize {
		return "", validationError("image must be smaller than %d bytes", maxImageSize)
	}
	return s.UploadFile(file)
}

// UploadFile 上传文件
func (s *UploadService) UploadFile(file *multipart.FileHeader) (string, error) {
	// 生成唯一文件名
	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	// 创建目标文件
	dst, err := os.Create(filepath.Join(s.uploadDir, filename))
	if err != nil {
		return "", NewError(ErrInternal, "failed to store file", err)
	}
	defer dst.Close()

	// 打开源文件
	src, err := file.Open()
	if err != nil {
		return "", NewError(ErrInternal, "failed to open upload", err)
	}
	defer src.Close()

	// 复制文件内容
	if _, err = io.Copy(dst, src); err != nil {
		return "", NewError(ErrInternal, "failed to store file", err)
	}

	return s.GetFileURL(filename), nil
}

// Owns 是否为本服务生成的URL
func (s *UploadService) Owns(url string) bool {
	return strings.HasPrefix(url, uploadURLPrefix)
}

// DeleteFile 删除文件
func (s *UploadService) DeleteFile(url string) error {
	filename := filepath.Base(url)
	err := os.Remove(filepath.Join(s.uploadDir, filename))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetFileURL 获取文件URL
func (s *UploadService) GetFileURL(filename string) string {
	return uploadURLPrefix + filename
}
