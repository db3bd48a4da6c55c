package bot

// User-facing texts. The bot speaks Russian.
const (
	msgStart = "Привет! Я помогу вести списки покупок.\n" +
		"Список 'default' уже создан. Команды: /help"
	msgHelp = "Команды:\n" +
		"/show_lists — мои списки\n" +
		"/create_list — создать список\n" +
		"/select_list — выбрать список\n" +
		"/delete_list — удалить список\n" +
		"/add — добавить покупки (два пробела разделяют позиции)\n" +
		"/remove — удалить покупки (номера или названия через пробел)\n" +
		"/list_items — показать текущий список\n" +
		"/cancel — отменить текущее действие"

	msgAskListName  = "Введите название нового списка:"
	msgInvalidName  = "Название не подходит, список не создан."
	msgListCreated  = "Список *%s* создан и выбран."
	msgListExists   = "Список *%s* уже существует."
	msgChooseList   = "Выберите список (номер или название):"
	msgListSelected = "Выбран список *%s*."
	msgUnknownList  = "Такого списка нет."

	msgChooseDelete  = "Какой список удалить? (номер или название)"
	msgConfirmDelete = "Удалить список *%s*? Напишите «да» для подтверждения."
	msgListDeleted   = "Список *%s* удалён."
	msgDeleteAborted = "Удаление отменено."
	msgProtectedList = "Список *default* удалить нельзя."
	msgActiveReset   = "Активным снова стал список *default*."

	msgAskItems    = "Что добавить? Два пробела разделяют позиции."
	msgItemsAdded  = "Добавлено: %s"
	msgNothingToAdd = "Не получилось разобрать покупки, ничего не добавлено."

	msgAskRemove       = "Что удалить? Номера или названия через пробел."
	msgItemsRemoved    = "Удалено: %s"
	msgTokensUnmatched = "Не нашлось: %s"

	msgEmptyList    = "Список *%s* пуст."
	msgAllDone      = "Все покупки вычеркнуты! Можно удалить завершённый список."
	msgCleared      = "Завершённые покупки убраны."
	msgCanceled     = "Отменено."
	msgOutOfContext = "Не понимаю. Посмотрите /help или начните с /show_lists."
	msgStorageDown  = "Хранилище сейчас недоступно, попробуйте позже."

	btnDeleteCompleted = "🗑 Удалить завершённый список"
	btnShowLists       = "📋 Мои списки"
	btnShowItems       = "🛒 Показать покупки"
)

// affirmatives confirm a pending list deletion.
var affirmatives = map[string]struct{}{
	"да":  {},
	"yes": {},
}
