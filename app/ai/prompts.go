package ai

// Prompts and drafts are in pt-BR to match the complaint language; asking
// the model to cross languages degrades both analysis and tone.

const analysisPromptTemplate = `Você é um analista de atendimento ao cliente de uma farmácia online.
Analise a reclamação abaixo e responda SOMENTE com um JSON válido, sem explicações, no formato:
{
  "sentimento": "Positivo" | "Neutro" | "Negativo",
  "nota": <número de 0 a 10, onde 0 é extremamente negativo e 10 extremamente positivo>,
  "categorias": [<uma ou mais entre: "entrega", "produto", "atendimento", "cobranca", "site", "outros">],
  "temas": [<até 3 temas curtos em minúsculas descrevendo o problema>],
  "urgencia": <número de 0 a 10, onde 10 exige ação imediata>
}

Título: %s

Reclamação:
%s`

const responsePromptTemplate = `Você é o time de atendimento de uma farmácia online escrevendo uma resposta pública a uma reclamação.
Reescreva o rascunho abaixo para responder diretamente ao problema relatado pelo cliente, mantendo tom empático, profissional e conciso (máximo 120 palavras).
Mantenha a oferta de cupom exatamente como está no rascunho. Não invente fatos nem prometa prazos específicos.
Responda SOMENTE com o texto final da resposta, sem aspas nem comentários.

Nome do cliente: %s

Reclamação:
%s

Rascunho:
%s`

// responseDrafts are the per-category fallback templates. They ship the
// final text when the model is unavailable and seed the rewrite otherwise.
var responseDrafts = map[string]string{
	"entrega": "Olá, %s! Lamentamos muito o transtorno com a entrega do seu pedido. Já acionamos nossa equipe de logística para localizar o seu pacote e daremos retorno o mais rápido possível. Como forma de desculpas, oferecemos o cupom %s com %d%% de desconto na sua próxima compra, válido por 30 dias.",
	"produto": "Olá, %s! Sentimos muito pelo problema com o produto recebido. Nossa equipe de qualidade já foi notificada e vamos providenciar a troca ou o reembolso. Para compensar o transtorno, use o cupom %s com %d%% de desconto na sua próxima compra, válido por 30 dias.",
	"atendimento": "Olá, %s! Pedimos desculpas pela experiência com o nosso atendimento, isso não reflete o padrão que buscamos. Seu caso foi encaminhado com prioridade para a supervisão. Oferecemos o cupom %s com %d%% de desconto na sua próxima compra, válido por 30 dias.",
	"cobranca": "Olá, %s! Lamentamos o problema com a cobrança. Nossa equipe financeira já está verificando o ocorrido e qualquer valor indevido será estornado. Como forma de desculpas, disponibilizamos o cupom %s com %d%% de desconto na sua próxima compra, válido por 30 dias.",
	"site":     "Olá, %s! Sentimos muito pela dificuldade com o nosso site. Nossa equipe técnica foi acionada para corrigir o problema. Enquanto isso, oferecemos o cupom %s com %d%% de desconto na sua próxima compra, válido por 30 dias.",
	"outros":   "Olá, %s! Lamentamos o transtorno relatado. Sua reclamação foi registrada e nossa equipe entrará em contato para resolver a situação. Como forma de desculpas, oferecemos o cupom %s com %d%% de desconto na sua próxima compra, válido por 30 dias.",
}

const defaultCustomerName = "cliente"
