package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation は入力検証エラーを表します
	ErrValidation = errors.New("validation error")
	// ErrNotFound は予約が存在しない、または本人の予約でないことを表します
	ErrNotFound = errors.New("reservation not found")
	// ErrStorage は永続化層の障害を表します
	ErrStorage = errors.New("storage error")
)

// 検証エラーのフィールド名です
// 元の予約フォームのブロックに対応しています
const (
	FieldTitle     = "title"
	FieldReminder  = "reminder"
	FieldEndTime   = "end_time"
	FieldDate      = "date"
	FieldStartTime = "start_time"
)

// 検証エラーのコードです
const (
	CodeRequired     = "required"
	CodeInvalidLead  = "invalid_reminder"
	CodeEndNotAfter  = "end_not_after_start"
	CodeInPast       = "start_in_past"
	CodeTimeConflict = "time_conflict"
)

// FieldError はフィールド単位の検証エラーです
type FieldError struct {
	Field   string
	Code    string
	Message string
	// Conflict は時間帯が重複した既存の予約です（CodeTimeConflictのみ）
	Conflict *Reservation
}

// ValidationError は予約作成時の検証エラーをまとめて保持します
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(msgs, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Add はフィールドエラーを追加します
func (e *ValidationError) Add(f FieldError) {
	e.Fields = append(e.Fields, f)
}

// Has は指定したコードのエラーが含まれるかを返します
func (e *ValidationError) Has(code string) bool {
	return e.Find(code) != nil
}

// Find は指定したコードの最初のエラーを返します
func (e *ValidationError) Find(code string) *FieldError {
	for i := range e.Fields {
		if e.Fields[i].Code == code {
			return &e.Fields[i]
		}
	}
	return nil
}

// ByField はフィールド名ごとのメッセージに変換します
// フロントエンドがフォームにエラーを表示する際に利用します
func (e *ValidationError) ByField() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := m[f.Field]; !ok {
			m[f.Field] = f.Message
		}
	}
	return m
}

// NewConflictError は重複した予約を参照するフィールドエラーを作成します
func NewConflictError(conflict Reservation) FieldError {
	return FieldError{
		Field: FieldStartTime,
		Code:  CodeTimeConflict,
		Message: fmt.Sprintf("その時間帯は既に予約があります（%s / %s-%s）",
			conflict.Title,
			conflict.StartTime.Format(ClockLayout),
			conflict.EndTime.Format(ClockLayout)),
		Conflict: &conflict,
	}
}

// NotFoundError はキャンセル対象の予約が見つからないことを表します
// 他人の予約であっても同じエラーを返します
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("reservation %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StorageError は永続化層で発生した想定外のエラーです
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError はerrをStorageErrorで包みます。errがnilの場合はnilを返します
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
