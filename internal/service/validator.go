package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"familytree_go/internal/model"
)

// Validator 数据验证服务
type Validator struct {
	validate *validator.Validate
}

// NewValidator 创建验证器实例并注册自定义规则
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "gender", func(fl validator.FieldLevel) bool {
		g := model.Gender(fl.Field().String())
		return g == model.GenderMale || g == model.GenderFemale
	})
	mustRegister(v, "member_status", func(fl validator.FieldLevel) bool {
		s := model.Status(fl.Field().String())
		return s == model.StatusAlive || s == model.StatusDeceased
	})
	mustRegister(v, "familydate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "relationship_type", func(fl validator.FieldLevel) bool {
		value := model.RelationshipType(fl.Field().String())
		for _, t := range model.RelationshipTypes {
			if t == value {
				return true
			}
		}
		return false
	})
	mustRegister(v, "child_type", func(fl validator.FieldLevel) bool {
		value := model.ChildType(fl.Field().String())
		for _, t := range model.ChildTypes {
			if t == value {
				return true
			}
		}
		return false
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// Struct 校验结构体，失败时返回ErrValidation
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewError(ErrValidation, "invalid payload", err)
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	return NewError(ErrValidation, "validation errors: "+strings.Join(messages, "; "), nil)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "gender":
		return fmt.Sprintf("%s must be either 'male' or 'female'", field)
	case "member_status":
		return fmt.Sprintf("%s must be either 'alive' or 'deceased'", field)
	case "familydate":
		return fmt.Sprintf("%s must be a valid date (YYYY-MM-DD or DD-MM-YYYY)", field)
	case "relationship_type":
		return fmt.Sprintf("%s is not a valid relationship type", field)
	case "child_type":
		return fmt.Sprintf("%s is not a valid child type", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// Var 校验单个字段
func (v *Validator) Var(field interface{}, name, tag string) error {
	err := v.validate.Var(field, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fieldMessage(fe)
		return NewError(ErrValidation, name+strings.TrimPrefix(msg, fe.Namespace()), nil)
	}
	return NewError(ErrValidation, name+" is invalid", err)
}
