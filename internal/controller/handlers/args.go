package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/service"
)

var ErrUsage = errors.New("invalid command arguments")

// commandArgs отрезает от текста команду (/cmd или /cmd@bot) и возвращает аргументы
func commandArgs(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	_, rest, _ := strings.Cut(text, " ")
	return strings.TrimSpace(rest)
}

// SchoolArgs аргументы /addschool
type SchoolArgs struct {
	Name       string
	LessonName string
	ClassType  string
}

// ParseAddSchool разбирает "название; название занятий[; формат]"
func ParseAddSchool(args string) (SchoolArgs, error) {
	parts := strings.Split(args, ";")
	if len(parts) < 2 || len(parts) > 3 {
		return SchoolArgs{}, fmt.Errorf("%w: expected 2 or 3 parts separated by ';'", ErrUsage)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	out := SchoolArgs{Name: parts[0], LessonName: parts[1]}
	if len(parts) == 3 {
		out.ClassType = parts[2]
	}
	return out, nil
}

// ParseAddSlot разбирает "schoolID дата время мест тип формат [заметка...]"
func ParseAddSlot(args string) (service.SlotInput, error) {
	fields := strings.Fields(args)
	if len(fields) < 6 {
		return service.SlotInput{}, fmt.Errorf("%w: expected at least 6 fields, got %d", ErrUsage, len(fields))
	}

	capacity, err := strconv.Atoi(fields[3])
	if err != nil {
		return service.SlotInput{}, fmt.Errorf("%w: capacity %q is not a number", ErrUsage, fields[3])
	}

	return service.SlotInput{
		TeacherID:  fields[0],
		Date:       fields[1],
		Time:       fields[2],
		Capacity:   capacity,
		LessonType: model.LessonType(fields[4]),
		ClassType:  model.ClassType(fields[5]),
		Memo:       strings.Join(fields[6:], " "),
	}, nil
}

// ParseEditSlot разбирает "slotID ключ=значение ...".
// Ключи: time, capacity, lesson, class, memo; memo забирает остаток строки.
func ParseEditSlot(args string) (string, service.SlotPatch, error) {
	var patch service.SlotPatch

	slotID, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	if slotID == "" {
		return "", patch, fmt.Errorf("%w: slot id is required", ErrUsage)
	}

	rest = strings.TrimSpace(rest)
	for rest != "" {
		if memo, ok := strings.CutPrefix(rest, "memo="); ok {
			memo = strings.TrimSpace(memo)
			patch.Memo = &memo
			break
		}

		var token string
		token, rest, _ = strings.Cut(rest, " ")
		rest = strings.TrimSpace(rest)

		key, value, ok := strings.Cut(token, "=")
		if !ok || value == "" {
			return "", patch, fmt.Errorf("%w: bad pair %q", ErrUsage, token)
		}

		switch key {
		case "time":
			patch.Time = &value
		case "capacity":
			n, err := strconv.Atoi(value)
			if err != nil {
				return "", patch, fmt.Errorf("%w: capacity %q is not a number", ErrUsage, value)
			}
			patch.Capacity = &n
		case "lesson":
			lt := model.LessonType(value)
			patch.LessonType = &lt
		case "class":
			ct := model.ClassType(value)
			patch.ClassType = &ct
		default:
			return "", patch, fmt.Errorf("%w: unknown key %q", ErrUsage, key)
		}
	}

	if patch.Empty() {
		return "", patch, fmt.Errorf("%w: nothing to change", ErrUsage)
	}
	return slotID, patch, nil
}
