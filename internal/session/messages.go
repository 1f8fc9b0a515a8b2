package session

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Messages holds every text shown to users. Templates may use the
// {vacancy}, {description}, {name}, {phone}, {question} and {answer}
// placeholders where noted.
type Messages struct {
	Greeting           string `mapstructure:"greeting"`
	NoOpenVacancies    string `mapstructure:"no-open-vacancies"`
	NotFound           string `mapstructure:"not-found"`
	SelectionNotFound  string `mapstructure:"selection-not-found"`
	Selected           string `mapstructure:"selected"` // {vacancy} {description}
	InvalidName        string `mapstructure:"invalid-name"`
	AskPhone           string `mapstructure:"ask-phone"`
	InvalidPhone       string `mapstructure:"invalid-phone"`
	Submitted          string `mapstructure:"submitted"`         // {vacancy} {name} {phone}
	SubmissionFailed   string `mapstructure:"submission-failed"` // {vacancy} {name} {phone}
	CatalogUnavailable string `mapstructure:"catalog-unavailable"`
	Cancelled          string `mapstructure:"cancelled"`
	NoQuestions        string `mapstructure:"no-questions"`
	QuestionsHeader    string `mapstructure:"questions-header"`
	QuestionItem       string `mapstructure:"question-item"` // {question} {answer}

	RateLabel        string `mapstructure:"rate-label"`
	ScheduleALabel   string `mapstructure:"schedule-a-label"`
	ScheduleBLabel   string `mapstructure:"schedule-b-label"`
	StatusLabel      string `mapstructure:"status-label"`
	DescriptionLabel string `mapstructure:"description-label"`

	ButtonList      string `mapstructure:"button-list"`
	ButtonQuestions string `mapstructure:"button-questions"`
	ButtonApply     string `mapstructure:"button-apply"`
	ButtonBack      string `mapstructure:"button-back"`
	ButtonCancel    string `mapstructure:"button-cancel"`
}

func DefaultMessages() Messages {
	return Messages{
		Greeting: "Здравствуйте! Я бот кадрового агентства.\n\n" +
			"Я помогу вам подобрать вакансию. Напишите название профессии или нажмите кнопку ниже.",
		NoOpenVacancies: "Сейчас нет открытых вакансий.",
		NotFound: "По вашему запросу вакансий не найдено. " +
			"Попробуйте написать название вакансии или нажмите кнопку 'АКТУАЛЬНЫЕ ВАКАНСИИ'.",
		SelectionNotFound:  "Вакансия не найдена.",
		Selected:           "Вы выбрали вакансию:\n\n*{vacancy}*{description}\n\nПожалуйста, введите ваше ФИО:",
		InvalidName:        "Пожалуйста, введите корректное ФИО (только русские буквы, пробелы и дефисы).",
		AskPhone:           "Спасибо! Теперь введите, пожалуйста, ваш номер телефона:",
		InvalidPhone:       "Неверный формат номера телефона. Введите заново.",
		Submitted:          "Ваш отклик на вакансию *{vacancy}* принят!\n\nФИО: {name}\nТелефон: {phone}\n\nСпасибо за отклик!",
		SubmissionFailed:   "Не удалось сохранить отклик на вакансию *{vacancy}*.\n\nФИО: {name}\nТелефон: {phone}\n\nПопробуйте откликнуться ещё раз позже.",
		CatalogUnavailable: "Не удалось получить список вакансий. Попробуйте ещё раз позже.",
		Cancelled:          "Отклик отменён. Напишите название профессии, чтобы начать заново.",
		NoQuestions:        "Вопросы и ответы еще не добавлены.",
		QuestionsHeader:    "❓ *Вопросы и ответы:*\n\n",
		QuestionItem:       "🔹 *Вопрос:* {question}\n📝 *Ответ:* {answer}\n\n",

		RateLabel:        "💵 Часовая ставка",
		ScheduleALabel:   "🕐 Вахта по 12 часов (30/30)",
		ScheduleBLabel:   "🕑 Вахта по 11 часов (60/30)",
		StatusLabel:      "📌 Статус",
		DescriptionLabel: "📃 Описание вакансии",

		ButtonList:      "АКТУАЛЬНЫЕ ВАКАНСИИ",
		ButtonQuestions: "У МЕНЯ ВОПРОС",
		ButtonApply:     "Откликнуться",
		ButtonBack:      "Назад",
		ButtonCancel:    "Отмена",
	}
}

// Override returns a copy of m with the keys present in values replaced.
func (m Messages) Override(values map[string]any) (Messages, error) {
	if len(values) == 0 {
		return m, nil
	}

	if err := mapstructure.Decode(values, &m); err != nil {
		return m, fmt.Errorf("decoding messages: %w", err)
	}

	return m, nil
}

func fill(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// escape protects catalog and user values inside legacy Markdown.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}
