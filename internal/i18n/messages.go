package i18n

// messages maps key -> language -> fmt template.
var messages = map[string]map[string]string{

	// ─── Date range / pricing policy ────────────────────────────────────────
	"dates.return_before_pickup": {
		"bg": "Датата на връщане е преди датата на вземане.",
		"en": "The return date is before the pickup date.",
	},
	"dates.same_day": {
		"bg": "Вземането и връщането не могат да бъдат в един и същи ден.",
		"en": "Pickup and return cannot be on the same day.",
	},
	// %d = minimum number of days
	"dates.minimum_period": {
		"bg": "Минималният период на наемане е %d дни.",
		"en": "The minimum rental period is %d days.",
	},
	"dates.invalid_range": {
		"bg": "Моля, изберете валидни дати. Датата на вземане не може да е в миналото.",
		"en": "Please choose valid dates. The pickup date cannot be in the past.",
	},
	"dates.invalid_token": {
		"bg": "Връзката за резервация е невалидна. Моля, изберете датите отново.",
		"en": "The booking link is invalid. Please choose your dates again.",
	},

	// ─── Booking ────────────────────────────────────────────────────────────
	"booking.car_not_found": {
		"bg": "Избраният автомобил не съществува.",
		"en": "The selected car does not exist.",
	},
	"booking.car_unavailable": {
		"bg": "Избраният автомобил в момента не е наличен.",
		"en": "The selected car is currently unavailable.",
	},
	"booking.class_unknown": {
		"bg": "Непознат клас автомобил.",
		"en": "Unknown car class.",
	},
	"booking.failed": {
		"bg": "Възникна грешка при резервацията. Моля, опитайте отново.",
		"en": "Something went wrong with your booking. Please try again.",
	},
	"contact.failed": {
		"bg": "Съобщението не беше изпратено. Моля, опитайте отново.",
		"en": "Your message could not be sent. Please try again.",
	},

	// ─── Emails ─────────────────────────────────────────────────────────────
	// %s = reservation id
	"email.customer.subject": {
		"bg": "Вашата резервация %s",
		"en": "Your reservation %s",
	},
	// %s = client name
	"email.owner.subject": {
		"bg": "Нова резервация от %s",
		"en": "New booking from %s",
	},
	// %s = sender name
	"email.contact.subject": {
		"bg": "Ново запитване от %s",
		"en": "New enquiry from %s",
	},

	// ─── Field validation ───────────────────────────────────────────────────
	"validation.required": {
		"bg": "Полето е задължително.",
		"en": "This field is required.",
	},
	"validation.email": {
		"bg": "Моля, въведете валиден имейл адрес.",
		"en": "Please enter a valid email address.",
	},
	"validation.phone": {
		"bg": "Моля, въведете валиден телефонен номер.",
		"en": "Please enter a valid phone number.",
	},
	// %s = minimum length
	"validation.min": {
		"bg": "Трябва да съдържа поне %s символа.",
		"en": "Must be at least %s characters long.",
	},
	// %s = maximum length
	"validation.max": {
		"bg": "Трябва да съдържа най-много %s символа.",
		"en": "Must be at most %s characters long.",
	},
	// %s = allowed values
	"validation.oneof": {
		"bg": "Позволени стойности: %s.",
		"en": "Allowed values: %s.",
	},
	"validation.uuid": {
		"bg": "Невалиден идентификатор.",
		"en": "Invalid identifier.",
	},
	"validation.invalid": {
		"bg": "Невалидна стойност.",
		"en": "Invalid value.",
	},
	"validation.failed": {
		"bg": "Моля, коригирайте отбелязаните полета.",
		"en": "Please correct the highlighted fields.",
	},

	// ─── Generic ────────────────────────────────────────────────────────────
	"request.invalid_body": {
		"bg": "Невалидна заявка.",
		"en": "Invalid request.",
	},
	"request.not_found": {
		"bg": "Не е намерено.",
		"en": "Not found.",
	},
	"request.conflict": {
		"bg": "Записът се използва и не може да бъде променен.",
		"en": "The record is in use and cannot be changed.",
	},
	"request.internal": {
		"bg": "Възникна неочаквана грешка.",
		"en": "An unexpected error occurred.",
	},
	"request.upstream": {
		"bg": "Услугата е временно недостъпна. Моля, опитайте по-късно.",
		"en": "The service is temporarily unavailable. Please try again later.",
	},
	"request.unsupported_format": {
		"bg": "Неподдържан формат.",
		"en": "Unsupported format.",
	},
	"admin.invalid_credentials": {
		"bg": "Грешно потребителско име или парола.",
		"en": "Wrong username or password.",
	},
	"admin.unauthorized": {
		"bg": "Моля, влезте в профила си.",
		"en": "Please log in.",
	},
	"storage.disabled": {
		"bg": "Качването на снимки не е конфигурирано.",
		"en": "Image uploads are not configured.",
	},
	"storage.too_large": {
		"bg": "Изображението е твърде голямо.",
		"en": "The image is too large.",
	},
	"storage.unsupported_type": {
		"bg": "Позволени са само JPEG, PNG и WebP изображения.",
		"en": "Only JPEG, PNG and WebP images are allowed.",
	},
}
