package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength      = 3
	MaxUsernameLength      = 30
	MinServiceTitleLength  = 3
	MaxServiceTitleLength  = 200
	MinServiceDescLength   = 10
	MaxServiceDescLength   = 5000
	MinAddOnTitleLength    = 1
	MaxAddOnTitleLength    = 200
	MaxAddOnDurationDays   = 365
	MinCategoryNameLength  = 2
	MaxCategoryNameLength  = 100
	MinPostTitleLength     = 1
	MaxPostTitleLength     = 200
	MaxPostBodyLength      = 10000
	MaxCommentLength       = 2000
	MaxRatingCommentLength = 2000
	MinMessageLength       = 1
	MaxMessageLength       = 5000
	MinPrice               = 0.0
	MaxPrice               = 100000000.0 // 100 миллионов
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	// Базовая проверка формата
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	// Проверка на валидные символы в локальной части
	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	// Проверка на валидные символы в доменной части
	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	// Проверка длины
	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	// Проверка на допустимые символы (только буквы, цифры и подчеркивание)
	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	// Проверка, что не начинается с цифры
	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateServiceTitle проверяет заголовок услуги.
func ValidateServiceTitle(title string) error {
	if title == "" {
		return fmt.Errorf("название услуги обязательно")
	}

	title = strings.TrimSpace(title)

	return ValidateLength("название услуги", title, MinServiceTitleLength, MaxServiceTitleLength)
}

// ValidateServiceDescription проверяет описание услуги.
func ValidateServiceDescription(description string) error {
	if description == "" {
		return fmt.Errorf("описание услуги обязательно")
	}

	description = strings.TrimSpace(description)

	return ValidateLength("описание услуги", description, MinServiceDescLength, MaxServiceDescLength)
}

// ValidatePrice проверяет цену услуги или дополнения.
func ValidatePrice(price float64) error {
	if price <= MinPrice {
		return fmt.Errorf("цена должна быть положительной")
	}
	if price > MaxPrice {
		return fmt.Errorf("цена не может превышать %.0f", MaxPrice)
	}
	return nil
}

// ValidateAddOnTitle проверяет название дополнения.
func ValidateAddOnTitle(title string) error {
	if title == "" {
		return fmt.Errorf("название дополнения обязательно")
	}

	title = strings.TrimSpace(title)

	return ValidateLength("название дополнения", title, MinAddOnTitleLength, MaxAddOnTitleLength)
}

// ValidateAddOnDuration проверяет срок выполнения дополнения в днях.
func ValidateAddOnDuration(days int) error {
	if days <= 0 {
		return fmt.Errorf("срок выполнения должен быть положительным")
	}
	if days > MaxAddOnDurationDays {
		return fmt.Errorf("срок выполнения не может превышать %d дней", MaxAddOnDurationDays)
	}
	return nil
}

// ValidateCategoryName проверяет название категории или подкатегории.
func ValidateCategoryName(name string) error {
	if name == "" {
		return fmt.Errorf("название категории обязательно")
	}

	name = strings.TrimSpace(name)

	return ValidateLength("название категории", name, MinCategoryNameLength, MaxCategoryNameLength)
}

// ValidateRatingValue проверяет значение оценки.
func ValidateRatingValue(value int) error {
	if value < 1 || value > 5 {
		return fmt.Errorf("оценка должна быть от 1 до 5")
	}
	return nil
}

// ValidatePostTitle проверяет заголовок поста.
func ValidatePostTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок поста обязателен")
	}

	title = strings.TrimSpace(title)

	return ValidateLength("заголовок поста", title, MinPostTitleLength, MaxPostTitleLength)
}

// ValidatePostBody проверяет текст поста.
func ValidatePostBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("текст поста не может быть пустым")
	}

	return ValidateLength("текст поста", body, 1, MaxPostBodyLength)
}

// ValidateCommentBody проверяет текст комментария.
func ValidateCommentBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("комментарий не может быть пустым")
	}

	return ValidateLength("комментарий", body, 1, MaxCommentLength)
}

// ValidateMessageContent проверяет содержимое сообщения чата.
func ValidateMessageContent(content string) error {
	if content == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}

	content = strings.TrimSpace(content)

	return ValidateLength("сообщение", content, MinMessageLength, MaxMessageLength)
}
