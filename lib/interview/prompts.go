package interview

const interviewerSystemPrompt = `Ты - вежливый технический интервьюер. Ты ведёшь интервью голосом от имени компании.
Задавай один вопрос за раз, без нумерации и без пояснений. Не приветствуй кандидата - приветствие уже прозвучало.
Не проси контактные данные и не давай ссылок. Когда интервью пора завершать, ответь единственным словом FINISHED.`

const openingPromptPattern = `Сформулируй первый содержательный вопрос интервью по вакансии.

Вакансия: %s
Описание: %s

Резюме кандидата:
%s

Заметки о соответствии резюме вакансии: %s

Дополнительные вопросы рекрутера (их задавать не нужно, они будут заданы отдельно): %s

Верни только текст вопроса.`

const nextQuestionPromptPattern = `Продолжи интервью: задай следующий вопрос кандидату.

Вакансия: %s
Описание: %s

Последние реплики диалога:
%s

Требования, которые ещё не подтверждены: %s
%s
Верни только текст вопроса, либо слово FINISHED, если интервью пора завершать.`

// подсказка при слишком коротком последнем ответе
const shortAnswerHint = "Последний ответ кандидата слишком короткий - попроси раскрыть тему конкретным примером.\n"

const weaknessProbePromptPattern = `Кандидат отвечает неуверенно. Сформулируй уточняющий вопрос интервью по самому слабому месту.

Вакансия: %s
Требование с наименьшим подтверждением: %s
Критерий хорошего ответа: %s

Последние реплики диалога:
%s

Верни только текст вопроса.`

const polishPromptPattern = `Перефразируй вопрос интервью мягче и дружелюбнее, сохранив смысл. Верни только текст вопроса.

%s`

// нейтральный вопрос на случай отказа всех уровней генерации
const neutralFollowUpQuestion = "Что бы вы сделали иначе в подобной ситуации, если бы решали задачу ещё раз?"
