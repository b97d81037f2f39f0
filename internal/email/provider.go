package email

// Provider определяет интерфейс для отправки email.
// Для воркфлоу это fire-and-forget: ошибки логируются вызывающей
// стороной и никогда не блокируют основную мутацию.
type Provider interface {
	// Send отправляет простое email сообщение
	Send(email *Email) error

	// SendTemplate рендерит именованный шаблон и отправляет письмо
	SendTemplate(to string, templateName string, data TemplateData) error

	// Validate проверяет конфигурацию провайдера
	Validate() error

	// Close закрывает соединение с провайдером
	Close() error
}
